package app

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/orbit"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/tool"
)

// Cursor sources.
const (
	CursorHand    = "hand"
	CursorPointer = "pointer"
)

// RenderVoxel is a visible voxel with its resolved geometry.
type RenderVoxel struct {
	scene.Voxel
	Geometry scene.Geometry `json:"geometry"`
}

// HandCursor is the projected fingertip of one hand.
type HandCursor struct {
	Detected bool       `json:"detected"`
	Position [3]float64 `json:"position"`
}

// Hands is the per-frame gesture summary shown by the renderer.
type Hands struct {
	Dominant HandCursor `json:"dominant"`
	Off      HandCursor `json:"off"`
	Pinching bool       `json:"pinching"`
	Fist     bool       `json:"fist"`
	Panning  bool       `json:"panning"`
}

// Cursor is the effective editing cursor. Position is unrounded; Cell is the
// grid cell a primary action would target.
type Cursor struct {
	Visible    bool        `json:"visible"`
	Source     string      `json:"source,omitempty"`
	Position   [3]float64  `json:"position"`
	Cell       scene.Cell  `json:"cell"`
	Shape      scene.Shape `json:"shape"`
	Dimensions scene.Dims  `json:"dimensions"`
	Color      string      `json:"color"`
}

// LayerState is a layer with its voxel count.
type LayerState struct {
	scene.Layer
	Count int `json:"count"`
}

// RenderState is the immutable snapshot the renderer draws from. Version
// increases on every change.
type RenderState struct {
	Version       uint64        `json:"version"`
	Tracking      bool          `json:"tracking"`
	Voxels        []RenderVoxel `json:"voxels"`
	Camera        orbit.State   `json:"camera"`
	Hands         Hands         `json:"hands"`
	Cursor        Cursor        `json:"cursor"`
	Tool          tool.Session  `json:"tool"`
	Preview       []scene.Cell  `json:"preview,omitempty"`
	Layers        []LayerState  `json:"layers"`
	ActiveLayerID string        `json:"activeLayerId"`
}

// renderInput gathers everything buildRenderState reads.
type renderInput struct {
	version  uint64
	tracking bool
	snap     *scene.Snapshot
	camera   orbit.State
	frame    gesture.Frame
	hover    *r3.Vec
	session  tool.Session
	preview  func(r3.Vec) []scene.Cell
}

func toArray(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func buildRenderState(in renderInput) *RenderState {
	rs := &RenderState{
		Version:       in.version,
		Tracking:      in.tracking,
		Camera:        in.camera,
		Tool:          in.session,
		ActiveLayerID: in.snap.ActiveLayerID(),
		Hands: Hands{
			Dominant: HandCursor{Detected: in.frame.Dominant.Detected, Position: toArray(in.frame.Dominant.Cursor)},
			Off:      HandCursor{Detected: in.frame.Off.Detected, Position: toArray(in.frame.Off.Cursor)},
			Pinching: in.frame.Dominant.Pinching,
			Fist:     in.frame.Off.Fist,
			Panning:  in.frame.Off.Panning,
		},
	}

	visible := in.snap.Visible()
	rs.Voxels = make([]RenderVoxel, len(visible))
	for i, v := range visible {
		selected := v.ID == in.session.SelectedID
		rs.Voxels[i] = RenderVoxel{
			Voxel:    v,
			Geometry: scene.GeometryFor(v.Shape, v.Dimensions, v.Color, selected),
		}
	}

	counts := in.snap.CountByLayer()
	for _, l := range in.snap.Layers() {
		rs.Layers = append(rs.Layers, LayerState{Layer: l, Count: counts[l.ID]})
	}

	var pos *r3.Vec
	rs.Cursor, pos = cursorFor(in)
	if pos != nil {
		rs.Preview = in.preview(*pos)
	}
	return rs
}

// cursorFor resolves the effective cursor. Any detected hand takes over from
// the pointer; the hand cursor hides while the off hand drives the camera.
// The returned position is nil when there is nothing to point with.
func cursorFor(in renderInput) (Cursor, *r3.Vec) {
	c := Cursor{
		Shape:      in.session.Shape,
		Dimensions: in.session.Dimensions,
		Color:      in.session.Color,
	}
	if in.session.Mode == tool.ModeMove && in.session.SelectedID != "" {
		if v, ok := in.snap.Voxel(in.session.SelectedID); ok {
			c.Shape, c.Dimensions, c.Color = v.Shape, v.Dimensions, v.Color
		}
	}

	var pos r3.Vec
	switch {
	case in.frame.AnyHand():
		c.Source = CursorHand
		if !in.frame.Dominant.Detected {
			return c, nil
		}
		pos = in.frame.Dominant.Cursor
		c.Visible = !in.frame.Off.Gesturing()
	case in.hover != nil:
		pos = *in.hover
		c.Source = CursorPointer
		c.Visible = true
	default:
		return c, nil
	}

	c.Position = toArray(pos)
	c.Cell = scene.Round(pos)
	return c, &pos
}
