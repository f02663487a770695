package app

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ayusman/mudra/internal/orbit"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tool"
)

// Tool returns the current tool state.
func (a *App) Tool() tool.Session {
	return a.tool.Session()
}

// SetMode switches the active tool.
func (a *App) SetMode(mode tool.Mode) error {
	err := a.mutate(func() error { return a.tool.SetMode(mode) })
	if err == nil {
		a.saveTool()
	}
	return err
}

// SetColor sets the color for new voxels and records it in the history.
func (a *App) SetColor(color string) error {
	err := a.mutate(func() error { return a.tool.SetColor(color) })
	if err != nil {
		return err
	}
	a.saveTool()
	if a.config.Store != nil {
		if err := a.config.Store.Colors().Touch(a.tool.Session().Color); err != nil {
			log.Printf("Failed to record color: %v", err)
		}
	}
	return nil
}

// SetShape sets the shape for new voxels.
func (a *App) SetShape(shape scene.Shape) error {
	err := a.mutate(func() error { return a.tool.SetShape(shape) })
	if err == nil {
		a.saveTool()
	}
	return err
}

// SetDimensions sets the per-axis scale for new voxels.
func (a *App) SetDimensions(dims scene.Dims) error {
	err := a.mutate(func() error { return a.tool.SetDimensions(dims) })
	if err == nil {
		a.saveTool()
	}
	return err
}

// RecentColors returns the color history, most recent first.
func (a *App) RecentColors() []string {
	if a.config.Store == nil {
		return nil
	}
	colors, err := a.config.Store.Colors().Recent()
	if err != nil {
		log.Printf("Failed to load recent colors: %v", err)
		return nil
	}
	return colors
}

// AddLayer appends a new layer and makes it active.
func (a *App) AddLayer() scene.Layer {
	var l scene.Layer
	a.mutate(func() error {
		l = a.scene.AddLayer()
		return nil
	})
	return l
}

// RemoveLayer deletes a layer and its voxels. The last layer cannot be
// removed.
func (a *App) RemoveLayer(id string) error {
	return a.mutate(func() error {
		snap := a.scene.Snapshot()
		if _, ok := snap.Layer(id); !ok {
			return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
		}
		if len(snap.Layers()) <= 1 {
			return ErrLastLayer
		}
		a.scene.RemoveLayer(id)
		return nil
	})
}

// RenameLayer renames a layer. Surrounding whitespace is trimmed.
func (a *App) RenameLayer(id, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}
	return a.mutate(func() error {
		if !a.scene.RenameLayer(id, name) {
			return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
		}
		return nil
	})
}

// ToggleLayerVisibility flips a layer's visibility.
func (a *App) ToggleLayerVisibility(id string) error {
	return a.mutate(func() error {
		if !a.scene.ToggleVisibility(id) {
			return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
		}
		return nil
	})
}

// SetLayerVisibility shows or hides a layer.
func (a *App) SetLayerVisibility(id string, visible bool) error {
	return a.mutate(func() error {
		if !a.scene.SetVisibility(id, visible) {
			return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
		}
		return nil
	})
}

// SetActiveLayer selects the layer that receives new voxels.
func (a *App) SetActiveLayer(id string) error {
	return a.mutate(func() error {
		if !a.scene.SetActiveLayer(id) {
			return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
		}
		return nil
	})
}

// ClearScene removes every voxel and layer and restores the default layer.
// A pending anchor or selection is dropped with them.
func (a *App) ClearScene() {
	a.mutate(func() error {
		a.scene.ClearAll()
		a.tool.ClearTransient()
		return nil
	})
}

func (a *App) saveTool() {
	if a.config.Store == nil {
		return
	}
	s := a.tool.Session()
	p := &store.ToolPreferences{
		Mode:       string(s.Mode),
		Color:      s.Color,
		Shape:      s.Shape.String(),
		Dimensions: s.Dimensions,
	}
	if err := a.config.Store.Preferences().SaveTool(p); err != nil {
		log.Printf("Failed to save tool preferences: %v", err)
	}
}

func (a *App) saveCamera() {
	if a.config.Store == nil {
		return
	}
	a.frameMu.Lock()
	s := a.orbit.State()
	a.frameMu.Unlock()

	v := &store.CameraView{Yaw: s.Yaw, Pitch: s.Pitch, Zoom: s.Zoom}
	if err := a.config.Store.Preferences().SaveCamera(v); err != nil {
		log.Printf("Failed to save camera view: %v", err)
	}
}

// loadPreferences restores the tool, camera and tracking flag. Invalid saved
// values are logged and skipped so a bad row never blocks startup.
func (a *App) loadPreferences() {
	if a.config.Store == nil {
		return
	}
	prefs := a.config.Store.Preferences()

	if p, err := prefs.Tool(); err == nil {
		a.restoreTool(p)
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to load tool preferences: %v", err)
	}

	if v, err := prefs.Camera(); err == nil {
		a.orbit = orbit.NewController(orbit.State{Yaw: v.Yaw, Pitch: v.Pitch, Zoom: v.Zoom})
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to load camera view: %v", err)
	}

	enabled, err := prefs.TrackingEnabled()
	if err != nil {
		log.Printf("Failed to load tracking preference: %v", err)
		return
	}
	a.enabled = enabled
}

func (a *App) restoreTool(p *store.ToolPreferences) {
	if err := a.tool.SetMode(tool.Mode(p.Mode)); err != nil {
		log.Printf("Ignoring saved mode: %v", err)
	}
	if err := a.tool.SetColor(p.Color); err != nil {
		log.Printf("Ignoring saved color: %v", err)
	}
	if shape, err := scene.ParseShape(p.Shape); err == nil {
		a.tool.SetShape(shape)
	} else {
		log.Printf("Ignoring saved shape: %v", err)
	}
	if err := a.tool.SetDimensions(p.Dimensions); err != nil {
		log.Printf("Ignoring saved dimensions: %v", err)
	}
}
