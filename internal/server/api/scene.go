package api

import "net/http"

// StateHandler serves GET /api/state.
type StateHandler struct {
	editor Editor
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(e Editor) *StateHandler {
	return &StateHandler{editor: e}
}

func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.editor.RenderState())
}

// ClearHandler serves POST /api/scene/clear.
type ClearHandler struct {
	editor Editor
}

// NewClearHandler creates a ClearHandler.
func NewClearHandler(e Editor) *ClearHandler {
	return &ClearHandler{editor: e}
}

func (h *ClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.editor.ClearScene()
	writeJSON(w, http.StatusOK, h.editor.RenderState())
}
