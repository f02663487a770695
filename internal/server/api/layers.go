package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/app"
)

// LayerHandler handles HTTP requests for layer resources.
type LayerHandler struct {
	editor Editor
}

// NewLayerHandler creates a LayerHandler.
func NewLayerHandler(e Editor) *LayerHandler {
	return &LayerHandler{editor: e}
}

type listLayersResponse struct {
	Layers        []app.LayerState `json:"layers"`
	ActiveLayerID string           `json:"activeLayerId"`
}

type renameLayerRequest struct {
	Name string `json:"name"`
}

// visibilityRequest sets visibility explicitly; an empty body toggles it.
type visibilityRequest struct {
	Visible *bool `json:"visible"`
}

// ServeHTTP routes:
//
//	GET    /api/layers
//	POST   /api/layers
//	PUT    /api/layers/{id}
//	DELETE /api/layers/{id}
//	POST   /api/layers/{id}/activate
//	POST   /api/layers/{id}/visibility
func (h *LayerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/layers")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w)
		case http.MethodPost:
			h.create(w)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id, action, _ := strings.Cut(path, "/")
	switch action {
	case "":
		switch r.Method {
		case http.MethodPut:
			h.rename(w, r, id)
		case http.MethodDelete:
			h.delete(w, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "activate":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.respond(w, h.editor.SetActiveLayer(id))
	case "visibility":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.visibility(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *LayerHandler) list(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, h.layers())
}

func (h *LayerHandler) layers() listLayersResponse {
	rs := h.editor.RenderState()
	return listLayersResponse{Layers: rs.Layers, ActiveLayerID: rs.ActiveLayerID}
}

func (h *LayerHandler) create(w http.ResponseWriter) {
	writeJSON(w, http.StatusCreated, h.editor.AddLayer())
}

func (h *LayerHandler) rename(w http.ResponseWriter, r *http.Request, id string) {
	var req renameLayerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	h.respond(w, h.editor.RenameLayer(id, req.Name))
}

func (h *LayerHandler) delete(w http.ResponseWriter, id string) {
	if err := h.editor.RemoveLayer(id); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LayerHandler) visibility(w http.ResponseWriter, r *http.Request, id string) {
	var req visibilityRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	if req.Visible == nil {
		h.respond(w, h.editor.ToggleLayerVisibility(id))
		return
	}
	h.respond(w, h.editor.SetLayerVisibility(id, *req.Visible))
}

// respond writes the layer list on success.
func (h *LayerHandler) respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.list(w)
}
