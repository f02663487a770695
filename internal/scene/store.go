package scene

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Default layer identity after startup or ClearAll.
const (
	DefaultLayerID   = "default"
	DefaultLayerName = "Layer 1"
)

// Entry is one candidate voxel for AddBatch. Position must already be in
// bounds; AddBatch does not re-check it.
type Entry struct {
	Position   Cell
	Color      string
	Shape      Shape
	Dimensions Dims
	LayerID    string
}

// Store holds the scene. Writers are serialized; Snapshot is lock-free and
// always returns a fully built state.
//
// Operations never fail. Invalid input (out of bounds, occupied cell, no
// active layer, unknown id) leaves the scene untouched and is reported only
// through the boolean result.
type Store struct {
	mu    sync.Mutex
	snap  atomic.Pointer[Snapshot]
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces uuid-based id allocation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates a store holding one empty default layer.
func NewStore(opts ...Option) *Store {
	s := &Store{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(defaultSnapshot(0))
	return s
}

func defaultSnapshot(version uint64) *Snapshot {
	return newSnapshot(version, nil, []Layer{{
		ID:      DefaultLayerID,
		Name:    DefaultLayerName,
		Visible: true,
	}}, DefaultLayerID)
}

// Snapshot returns the current scene state.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

func (s *Store) publish(cur *Snapshot, voxels []Voxel, layers []Layer, active string) {
	s.snap.Store(newSnapshot(cur.version+1, voxels, layers, active))
}

// Add places a voxel at the rounded position on the active layer.
func (s *Store) Add(pos r3.Vec, color string, shape Shape, dims Dims) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	cell := Round(pos)
	if cur.active == "" || !cell.InBounds() || cur.Occupied(cell) {
		return false
	}

	voxels := append(slices.Clone(cur.voxels), Voxel{
		ID:         s.newID(),
		Position:   cell,
		Color:      color,
		Shape:      shape,
		Dimensions: dims,
		LayerID:    cur.active,
	})
	s.publish(cur, voxels, cur.layers, cur.active)
	return true
}

// AddBatch admits entries in order, skipping any whose cell is already taken,
// including by an earlier entry of the same batch. It returns the number of
// voxels added.
func (s *Store) AddBatch(entries []Entry) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	taken := make(map[Cell]bool, len(cur.occupied)+len(entries))
	for c := range cur.occupied {
		taken[c] = true
	}

	voxels := slices.Clone(cur.voxels)
	added := 0
	for _, e := range entries {
		if taken[e.Position] {
			continue
		}
		taken[e.Position] = true
		voxels = append(voxels, Voxel{
			ID:         s.newID(),
			Position:   e.Position,
			Color:      e.Color,
			Shape:      e.Shape,
			Dimensions: e.Dimensions,
			LayerID:    e.LayerID,
		})
		added++
	}

	if added > 0 {
		s.publish(cur, voxels, cur.layers, cur.active)
	}
	return added
}

// Remove deletes the voxel at the rounded position if it belongs to the
// active layer.
func (s *Store) Remove(pos r3.Vec) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	v, ok := cur.At(Round(pos))
	if !ok || cur.active == "" || v.LayerID != cur.active {
		return false
	}

	voxels := slices.DeleteFunc(slices.Clone(cur.voxels), func(x Voxel) bool {
		return x.ID == v.ID
	})
	s.publish(cur, voxels, cur.layers, cur.active)
	return true
}

// Move relocates a voxel to the rounded position. The move is refused when the
// target is out of bounds or occupied by a different voxel.
func (s *Store) Move(id string, pos r3.Vec) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	i, ok := cur.byID[id]
	if !ok {
		return false
	}

	cell := Round(pos)
	if !cell.InBounds() {
		return false
	}
	if other, taken := cur.occupied[cell]; taken && other != id {
		return false
	}
	if cur.voxels[i].Position == cell {
		return true
	}

	voxels := slices.Clone(cur.voxels)
	voxels[i].Position = cell
	s.publish(cur, voxels, cur.layers, cur.active)
	return true
}

// FindOnActiveLayer returns the voxel at the rounded position when it belongs
// to the active layer.
func (s *Store) FindOnActiveLayer(pos r3.Vec) (Voxel, bool) {
	cur := s.snap.Load()
	v, ok := cur.At(Round(pos))
	if !ok || cur.active == "" || v.LayerID != cur.active {
		return Voxel{}, false
	}
	return v, true
}

// AddLayer appends a visible layer named "Layer N" and makes it active.
func (s *Store) AddLayer() Layer {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	l := Layer{
		ID:      s.newID(),
		Name:    "Layer " + strconv.Itoa(len(cur.layers)+1),
		Visible: true,
	}
	layers := append(slices.Clone(cur.layers), l)
	s.publish(cur, cur.voxels, layers, l.ID)
	return l
}

// RemoveLayer deletes a layer and every voxel on it. When the removed layer
// was active, the first remaining layer becomes active, or none if the list
// is now empty.
func (s *Store) RemoveLayer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if _, ok := cur.Layer(id); !ok {
		return false
	}

	layers := slices.DeleteFunc(slices.Clone(cur.layers), func(l Layer) bool {
		return l.ID == id
	})
	voxels := slices.DeleteFunc(slices.Clone(cur.voxels), func(v Voxel) bool {
		return v.LayerID == id
	})

	active := cur.active
	if active == id {
		active = ""
		if len(layers) > 0 {
			active = layers[0].ID
		}
	}

	s.publish(cur, voxels, layers, active)
	return true
}

// ToggleVisibility flips a layer's visibility.
func (s *Store) ToggleVisibility(id string) bool {
	return s.updateLayer(id, func(l *Layer) {
		l.Visible = !l.Visible
	})
}

// SetVisibility sets a layer's visibility.
func (s *Store) SetVisibility(id string, visible bool) bool {
	return s.updateLayer(id, func(l *Layer) {
		l.Visible = visible
	})
}

// RenameLayer trims name and applies it. Blank names are ignored.
func (s *Store) RenameLayer(id, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return s.updateLayer(id, func(l *Layer) {
		l.Name = name
	})
}

func (s *Store) updateLayer(id string, fn func(*Layer)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	i := slices.IndexFunc(cur.layers, func(l Layer) bool { return l.ID == id })
	if i < 0 {
		return false
	}

	layers := slices.Clone(cur.layers)
	fn(&layers[i])
	s.publish(cur, cur.voxels, layers, cur.active)
	return true
}

// SetActiveLayer selects the layer that receives new voxels.
func (s *Store) SetActiveLayer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if _, ok := cur.Layer(id); !ok {
		return false
	}
	if cur.active != id {
		s.publish(cur, cur.voxels, cur.layers, id)
	}
	return true
}

// ClearAll drops every voxel and layer and restores the default layer.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	s.snap.Store(defaultSnapshot(cur.version + 1))
}

// VisibleVoxels returns the voxels on visible layers.
func (s *Store) VisibleVoxels() []Voxel {
	return s.snap.Load().Visible()
}
