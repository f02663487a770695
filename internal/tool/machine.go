// Package tool implements the editing modes driven by primary actions
// (a pinch or a pointer press).
package tool

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/scene"
)

var (
	// ErrUnknownMode is returned when switching to an undefined mode.
	ErrUnknownMode = errors.New("unknown tool mode")
	// ErrInvalidDimensions is returned for non-positive voxel dimensions.
	ErrInvalidDimensions = errors.New("dimensions must be positive")
)

// Mode is the active editing tool.
type Mode string

const (
	ModeAdd       Mode = "add"
	ModeRemove    Mode = "remove"
	ModeLine      Mode = "line"
	ModeRectangle Mode = "rectangle"
	ModeMove      Mode = "move"
)

// Modes lists every mode in toolbar order.
var Modes = []Mode{ModeAdd, ModeRemove, ModeLine, ModeRectangle, ModeMove}

// Valid reports whether m is a defined mode.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Outcome describes what a primary action did.
type Outcome string

const (
	OutcomeNone     Outcome = "none"
	OutcomeAdded    Outcome = "added"
	OutcomeRemoved  Outcome = "removed"
	OutcomeAnchored Outcome = "anchored"
	OutcomeFilled   Outcome = "filled"
	OutcomeSelected Outcome = "selected"
	OutcomeMoved    Outcome = "moved"
)

// Result reports the effect of one primary action. Count is the number of
// voxels added by a line or rectangle.
type Result struct {
	Mode    Mode    `json:"mode"`
	Outcome Outcome `json:"outcome"`
	Count   int     `json:"count"`
}

// Scene is the subset of the voxel store the machine drives.
type Scene interface {
	Snapshot() *scene.Snapshot
	Add(pos r3.Vec, color string, shape scene.Shape, dims scene.Dims) bool
	AddBatch(entries []scene.Entry) int
	Remove(pos r3.Vec) bool
	Move(id string, pos r3.Vec) bool
	FindOnActiveLayer(pos r3.Vec) (scene.Voxel, bool)
}

// Session is a copy of the tool state for display.
type Session struct {
	Mode       Mode        `json:"mode"`
	Color      string      `json:"color"`
	Shape      scene.Shape `json:"shape"`
	Dimensions scene.Dims  `json:"dimensions"`
	Anchor     *scene.Cell `json:"anchor,omitempty"`
	SelectedID string      `json:"selectedId,omitempty"`
}

// Machine holds the active tool and its in-progress state. The anchor is only
// set in line and rectangle mode; the selection only in move mode.
type Machine struct {
	mu       sync.Mutex
	scene    Scene
	mode     Mode
	color    string
	shape    scene.Shape
	dims     scene.Dims
	anchor   *scene.Cell
	selected string
}

// NewMachine creates a machine in add mode with the default color, shape and
// dimensions.
func NewMachine(s Scene) *Machine {
	return &Machine{
		scene: s,
		mode:  ModeAdd,
		color: scene.DefaultColor,
		shape: scene.ShapeBox,
		dims:  scene.DefaultDims,
	}
}

// Session returns the current tool state.
func (m *Machine) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Session{
		Mode:       m.mode,
		Color:      m.color,
		Shape:      m.shape,
		Dimensions: m.dims,
		SelectedID: m.selected,
	}
	if m.anchor != nil {
		a := *m.anchor
		s.Anchor = &a
	}
	return s
}

// SetMode switches tools. Leaving a mode discards its pending anchor or
// selection; re-selecting the current mode keeps them.
func (m *Machine) SetMode(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if mode == m.mode {
		return nil
	}
	m.mode = mode
	m.anchor = nil
	m.selected = ""
	return nil
}

// SetColor sets the color for new voxels. Hex values and color names are
// accepted.
func (m *Machine) SetColor(color string) error {
	c, err := scene.NormalizeColor(color)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.color = c
	m.mu.Unlock()
	return nil
}

// SetShape sets the shape for new voxels.
func (m *Machine) SetShape(shape scene.Shape) error {
	if !shape.Valid() {
		return fmt.Errorf("%w: %d", scene.ErrUnknownShape, shape)
	}
	m.mu.Lock()
	m.shape = shape
	m.mu.Unlock()
	return nil
}

// SetDimensions sets the per-axis scale for new voxels.
func (m *Machine) SetDimensions(dims scene.Dims) error {
	if !dims.Valid() {
		return ErrInvalidDimensions
	}
	m.mu.Lock()
	m.dims = dims
	m.mu.Unlock()
	return nil
}

// ClearTransient drops any pending anchor or selection without changing mode.
func (m *Machine) ClearTransient() {
	m.mu.Lock()
	m.anchor = nil
	m.selected = ""
	m.mu.Unlock()
}

// PrimaryAction applies the active tool at pos, an unrounded grid-space point.
func (m *Machine) PrimaryAction(pos r3.Vec) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := Result{Mode: m.mode, Outcome: OutcomeNone}
	active := m.scene.Snapshot().ActiveLayerID()
	if active == "" {
		return res
	}

	switch m.mode {
	case ModeAdd:
		if m.scene.Add(pos, m.color, m.shape, m.dims) {
			res.Outcome, res.Count = OutcomeAdded, 1
		}

	case ModeRemove:
		if m.scene.Remove(pos) {
			res.Outcome = OutcomeRemoved
		}

	case ModeLine, ModeRectangle:
		cell := scene.Round(pos)
		if m.anchor == nil {
			m.anchor = &cell
			res.Outcome = OutcomeAnchored
			break
		}

		var cells []scene.Cell
		if m.mode == ModeLine {
			cells = Line(*m.anchor, cell)
		} else {
			cells = Box(*m.anchor, cell)
		}
		m.anchor = nil
		res.Count = m.scene.AddBatch(m.entries(cells, active))
		res.Outcome = OutcomeFilled

	case ModeMove:
		if m.selected == "" {
			if v, ok := m.scene.FindOnActiveLayer(pos); ok {
				m.selected = v.ID
				res.Outcome = OutcomeSelected
			}
			break
		}

		if m.scene.Move(m.selected, pos) {
			res.Outcome = OutcomeMoved
		}
		m.selected = ""
	}

	return res
}

func (m *Machine) entries(cells []scene.Cell, layerID string) []scene.Entry {
	out := make([]scene.Entry, len(cells))
	for i, c := range cells {
		out[i] = scene.Entry{
			Position:   c,
			Color:      m.color,
			Shape:      m.shape,
			Dimensions: m.dims,
			LayerID:    layerID,
		}
	}
	return out
}

// Preview returns the cells a pending line or rectangle would cover if the
// second corner were placed at cursor. It returns nil when nothing is pending.
func (m *Machine) Preview(cursor r3.Vec) []scene.Cell {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.anchor == nil {
		return nil
	}
	switch m.mode {
	case ModeLine:
		return Line(*m.anchor, scene.Round(cursor))
	case ModeRectangle:
		return Box(*m.anchor, scene.Round(cursor))
	}
	return nil
}
