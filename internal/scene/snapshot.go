package scene

import "slices"

// Voxel is one placed primitive.
type Voxel struct {
	ID         string `json:"id"`
	Position   Cell   `json:"position"`
	Color      string `json:"color"`
	Shape      Shape  `json:"shape"`
	Dimensions Dims   `json:"dimensions"`
	LayerID    string `json:"layerId"`
}

// Layer is a named, independently visible group of voxels.
type Layer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// Snapshot is an immutable view of the scene. Accessors return copies so
// callers cannot alter a published snapshot.
type Snapshot struct {
	version  uint64
	voxels   []Voxel
	layers   []Layer
	active   string
	byID     map[string]int
	occupied map[Cell]string
	visible  []Voxel
}

func newSnapshot(version uint64, voxels []Voxel, layers []Layer, active string) *Snapshot {
	s := &Snapshot{
		version:  version,
		voxels:   voxels,
		layers:   layers,
		active:   active,
		byID:     make(map[string]int, len(voxels)),
		occupied: make(map[Cell]string, len(voxels)),
	}

	shown := make(map[string]bool, len(layers))
	for _, l := range layers {
		shown[l.ID] = l.Visible
	}

	for i, v := range voxels {
		s.byID[v.ID] = i
		s.occupied[v.Position] = v.ID
		if shown[v.LayerID] {
			s.visible = append(s.visible, v)
		}
	}
	return s
}

// Version increases with every published mutation.
func (s *Snapshot) Version() uint64 { return s.version }

// Len returns the number of voxels across all layers.
func (s *Snapshot) Len() int { return len(s.voxels) }

// Voxels returns every voxel in insertion order.
func (s *Snapshot) Voxels() []Voxel { return slices.Clone(s.voxels) }

// Visible returns the voxels whose layer is visible, in insertion order.
func (s *Snapshot) Visible() []Voxel { return slices.Clone(s.visible) }

// Layers returns the layers in creation order.
func (s *Snapshot) Layers() []Layer { return slices.Clone(s.layers) }

// ActiveLayerID returns the active layer id, or "" when there is none.
func (s *Snapshot) ActiveLayerID() string { return s.active }

// Layer looks up a layer by id.
func (s *Snapshot) Layer(id string) (Layer, bool) {
	for _, l := range s.layers {
		if l.ID == id {
			return l, true
		}
	}
	return Layer{}, false
}

// Voxel looks up a voxel by id.
func (s *Snapshot) Voxel(id string) (Voxel, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Voxel{}, false
	}
	return s.voxels[i], true
}

// At returns the voxel occupying c on any layer.
func (s *Snapshot) At(c Cell) (Voxel, bool) {
	id, ok := s.occupied[c]
	if !ok {
		return Voxel{}, false
	}
	return s.Voxel(id)
}

// Occupied reports whether any voxel sits at c.
func (s *Snapshot) Occupied(c Cell) bool {
	_, ok := s.occupied[c]
	return ok
}

// CountByLayer returns the number of voxels on each layer.
func (s *Snapshot) CountByLayer() map[string]int {
	counts := make(map[string]int, len(s.layers))
	for _, v := range s.voxels {
		counts[v.LayerID]++
	}
	return counts
}
