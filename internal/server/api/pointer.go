package api

import (
	"net/http"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/tool"
)

// PointerHandler forwards pointer events from the renderer. Positions are
// grid-space hit points; the renderer lifts ground hits by half a cell.
type PointerHandler struct {
	editor Editor
}

// NewPointerHandler creates a PointerHandler.
func NewPointerHandler(e Editor) *PointerHandler {
	return &PointerHandler{editor: e}
}

type pointerRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Missed bool    `json:"missed"`
}

func (p pointerRequest) vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

type pointerResponse struct {
	// Applied is false when a detected hand has taken over from the pointer.
	Applied bool         `json:"applied"`
	Result  *tool.Result `json:"result,omitempty"`
}

// ServeHTTP handles POST /api/pointer/action and POST /api/pointer/hover.
func (h *PointerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req pointerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch r.URL.Path {
	case "/api/pointer/action":
		res, ok := h.editor.PointerAction(req.vec())
		resp := pointerResponse{Applied: ok}
		if ok {
			resp.Result = &res
		}
		writeJSON(w, http.StatusOK, resp)
	case "/api/pointer/hover":
		if req.Missed {
			h.editor.PointerMissed()
			writeJSON(w, http.StatusOK, pointerResponse{Applied: true})
			return
		}
		writeJSON(w, http.StatusOK, pointerResponse{Applied: h.editor.PointerHover(req.vec())})
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}
