package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/tool"
)

// ToolHandler serves /api/tool.
type ToolHandler struct {
	editor Editor
}

// NewToolHandler creates a ToolHandler.
func NewToolHandler(e Editor) *ToolHandler {
	return &ToolHandler{editor: e}
}

type toolResponse struct {
	tool.Session
	Modes        []tool.Mode   `json:"modes"`
	Shapes       []scene.Shape `json:"shapes"`
	Palette      []string      `json:"palette"`
	RecentColors []string      `json:"recentColors"`
}

// updateToolRequest carries the fields to change; absent fields are left
// alone.
type updateToolRequest struct {
	Mode       *tool.Mode   `json:"mode"`
	Color      *string      `json:"color"`
	Shape      *scene.Shape `json:"shape"`
	Dimensions *scene.Dims  `json:"dimensions"`
}

func (h *ToolHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ToolHandler) get(w http.ResponseWriter) {
	recent := h.editor.RecentColors()
	if recent == nil {
		recent = []string{}
	}
	writeJSON(w, http.StatusOK, toolResponse{
		Session:      h.editor.Tool(),
		Modes:        tool.Modes,
		Shapes:       scene.Shapes(),
		Palette:      scene.Palette,
		RecentColors: recent,
	})
}

func (h *ToolHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateToolRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Mode != nil {
		if err := h.editor.SetMode(*req.Mode); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Color != nil {
		if err := h.editor.SetColor(*req.Color); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Shape != nil {
		if err := h.editor.SetShape(*req.Shape); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Dimensions != nil {
		if err := h.editor.SetDimensions(*req.Dimensions); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	h.get(w)
}
