// Package api provides the REST handlers the external renderer uses to drive
// the editor.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/tool"
)

// Editor is the part of the App the handlers drive.
type Editor interface {
	RenderState() *app.RenderState

	Tool() tool.Session
	SetMode(mode tool.Mode) error
	SetColor(color string) error
	SetShape(shape scene.Shape) error
	SetDimensions(dims scene.Dims) error
	RecentColors() []string

	AddLayer() scene.Layer
	RemoveLayer(id string) error
	RenameLayer(id, name string) error
	ToggleLayerVisibility(id string) error
	SetLayerVisibility(id string, visible bool) error
	SetActiveLayer(id string) error
	ClearScene()

	PointerAction(pos r3.Vec) (tool.Result, bool)
	PointerHover(pos r3.Vec) bool
	PointerMissed()
}

var _ Editor = (*app.App)(nil)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps editor errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrLayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrLastLayer):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
