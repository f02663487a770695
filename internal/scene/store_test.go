package scene

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func vec(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

// assertInvariants checks uniqueness and bounds over every voxel.
func assertInvariants(t *testing.T, snap *Snapshot) {
	t.Helper()
	seen := make(map[Cell]string)
	for _, v := range snap.Voxels() {
		if prev, dup := seen[v.Position]; dup {
			t.Errorf("voxels %s and %s share %v", prev, v.ID, v.Position)
		}
		seen[v.Position] = v.ID
		assert.True(t, v.Position.InBounds(), "voxel %s out of bounds at %v", v.ID, v.Position)
	}
}

func TestNewStore_DefaultLayer(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()

	require.Len(t, snap.Layers(), 1)
	assert.Equal(t, Layer{ID: DefaultLayerID, Name: DefaultLayerName, Visible: true}, snap.Layers()[0])
	assert.Equal(t, DefaultLayerID, snap.ActiveLayerID())
	assert.Zero(t, snap.Len())
}

func TestStore_Add(t *testing.T) {
	t.Run("rounds and places on the active layer", func(t *testing.T) {
		s := NewStore(sequentialIDs())

		require.True(t, s.Add(vec(1.4, 2.5, -0.5), "#ff0000", ShapeSphere, Dims{1, 2, 1}))

		v, ok := s.Snapshot().At(Cell{1, 3, 0})
		require.True(t, ok)
		assert.Equal(t, Voxel{
			ID:         "id-1",
			Position:   Cell{1, 3, 0},
			Color:      "#ff0000",
			Shape:      ShapeSphere,
			Dimensions: Dims{1, 2, 1},
			LayerID:    DefaultLayerID,
		}, v)
	})

	t.Run("collision is a no-op", func(t *testing.T) {
		s := NewStore(sequentialIDs())
		require.True(t, s.Add(vec(0, 0, 0), "#ff0000", ShapeBox, DefaultDims))
		before := s.Snapshot()

		assert.False(t, s.Add(vec(0.2, -0.3, 0.4), "#00ff00", ShapeCone, DefaultDims))

		after := s.Snapshot()
		assert.Same(t, before, after, "no snapshot should be published")
		assert.Equal(t, before.Voxels(), after.Voxels())
	})

	t.Run("collision across layers", func(t *testing.T) {
		s := NewStore()
		require.True(t, s.Add(vec(2, 2, 2), DefaultColor, ShapeBox, DefaultDims))
		s.AddLayer()

		assert.False(t, s.Add(vec(2, 2, 2), DefaultColor, ShapeBox, DefaultDims))
		assert.Equal(t, 1, s.Snapshot().Len())
	})

	t.Run("out of bounds", func(t *testing.T) {
		s := NewStore()
		for _, p := range []r3.Vec{
			vec(16.6, 0, 0), vec(-16.6, 0, 0),
			vec(0, -0.6, 0), vec(0, 32.5, 0),
			vec(0, 0, 17), vec(0, 0, -17),
		} {
			assert.False(t, s.Add(p, DefaultColor, ShapeBox, DefaultDims), "Add(%v)", p)
		}
		assert.Zero(t, s.Snapshot().Len())

		for _, p := range []r3.Vec{vec(16, 0, 16), vec(-16, 32, -16), vec(16.4, -0.4, -16.4)} {
			assert.True(t, s.Add(p, DefaultColor, ShapeBox, DefaultDims), "Add(%v)", p)
		}
		assertInvariants(t, s.Snapshot())
	})

	t.Run("no active layer", func(t *testing.T) {
		s := NewStore()
		require.True(t, s.RemoveLayer(DefaultLayerID))
		require.Empty(t, s.Snapshot().ActiveLayerID())

		assert.False(t, s.Add(vec(0, 0, 0), DefaultColor, ShapeBox, DefaultDims))
	})
}

func TestStore_AddBatch(t *testing.T) {
	t.Run("adversarial duplicates", func(t *testing.T) {
		s := NewStore()
		require.True(t, s.Add(vec(1, 0, 0), DefaultColor, ShapeBox, DefaultDims))

		entry := func(x int) Entry {
			return Entry{Position: Cell{x, 0, 0}, Color: "#123456", Shape: ShapeBox, Dimensions: DefaultDims, LayerID: DefaultLayerID}
		}
		added := s.AddBatch([]Entry{entry(0), entry(0), entry(1), entry(2), entry(2), entry(0), entry(3)})

		assert.Equal(t, 3, added)
		snap := s.Snapshot()
		assert.Equal(t, 4, snap.Len())
		assertInvariants(t, snap)

		v, ok := snap.At(Cell{1, 0, 0})
		require.True(t, ok)
		assert.Equal(t, DefaultColor, v.Color, "existing voxel must be kept")
	})

	t.Run("keeps entry layer", func(t *testing.T) {
		s := NewStore()
		other := s.AddLayer()
		s.AddBatch([]Entry{{Position: Cell{0, 0, 0}, LayerID: DefaultLayerID, Dimensions: DefaultDims}})

		v, ok := s.Snapshot().At(Cell{0, 0, 0})
		require.True(t, ok)
		assert.Equal(t, DefaultLayerID, v.LayerID)
		assert.Equal(t, other.ID, s.Snapshot().ActiveLayerID())
	})

	t.Run("empty batch publishes nothing", func(t *testing.T) {
		s := NewStore()
		before := s.Snapshot()
		assert.Zero(t, s.AddBatch(nil))
		assert.Same(t, before, s.Snapshot())
	})
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(vec(0, 0, 0), DefaultColor, ShapeBox, DefaultDims))
	layer := s.AddLayer()
	require.True(t, s.Add(vec(1, 0, 0), DefaultColor, ShapeBox, DefaultDims))

	assert.False(t, s.Remove(vec(0, 0, 0)), "voxel on an inactive layer must not be removed")
	assert.False(t, s.Remove(vec(5, 5, 5)), "empty cell")
	assert.True(t, s.Remove(vec(0.8, 0.2, -0.3)))

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Len())
	assert.False(t, snap.Occupied(Cell{1, 0, 0}))
	assert.Equal(t, layer.ID, snap.ActiveLayerID())
}

func TestStore_Move(t *testing.T) {
	setup := func(t *testing.T) (*Store, string, string) {
		s := NewStore(sequentialIDs())
		require.True(t, s.Add(vec(0, 0, 0), DefaultColor, ShapeBox, DefaultDims))
		require.True(t, s.Add(vec(3, 0, 0), DefaultColor, ShapeBox, DefaultDims))
		return s, "id-1", "id-2"
	}

	t.Run("relocates in place", func(t *testing.T) {
		s, a, _ := setup(t)
		require.True(t, s.Move(a, vec(0.6, 4.4, -2)))

		v, ok := s.Snapshot().Voxel(a)
		require.True(t, ok)
		assert.Equal(t, Cell{1, 4, -2}, v.Position)
		assert.False(t, s.Snapshot().Occupied(Cell{0, 0, 0}))
		assert.Equal(t, []string{"id-1", "id-2"}, ids(s.Snapshot().Voxels()), "order is preserved")
	})

	t.Run("refuses occupied target", func(t *testing.T) {
		s, a, b := setup(t)
		assert.False(t, s.Move(a, vec(3, 0, 0)))

		va, _ := s.Snapshot().Voxel(a)
		vb, _ := s.Snapshot().Voxel(b)
		assert.Equal(t, Cell{0, 0, 0}, va.Position)
		assert.Equal(t, Cell{3, 0, 0}, vb.Position)
		assertInvariants(t, s.Snapshot())
	})

	t.Run("same cell", func(t *testing.T) {
		s, a, _ := setup(t)
		before := s.Snapshot()
		assert.True(t, s.Move(a, vec(0.1, 0, 0)))
		assert.Same(t, before, s.Snapshot())
	})

	t.Run("out of bounds and unknown id", func(t *testing.T) {
		s, a, _ := setup(t)
		assert.False(t, s.Move(a, vec(0, -1, 0)))
		assert.False(t, s.Move("missing", vec(1, 1, 1)))
		assertInvariants(t, s.Snapshot())
	})
}

func TestStore_FindOnActiveLayer(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(vec(0, 0, 0), DefaultColor, ShapeBox, DefaultDims))

	v, ok := s.FindOnActiveLayer(vec(0.3, 0, 0))
	require.True(t, ok)
	assert.Equal(t, Cell{0, 0, 0}, v.Position)

	s.AddLayer()
	_, ok = s.FindOnActiveLayer(vec(0, 0, 0))
	assert.False(t, ok)
}

func TestStore_Layers(t *testing.T) {
	t.Run("add names sequentially and activates", func(t *testing.T) {
		s := NewStore()
		l2 := s.AddLayer()
		l3 := s.AddLayer()

		assert.Equal(t, "Layer 2", l2.Name)
		assert.Equal(t, "Layer 3", l3.Name)
		assert.True(t, l3.Visible)
		assert.Equal(t, l3.ID, s.Snapshot().ActiveLayerID())
		assert.NotEqual(t, l2.ID, l3.ID)
	})

	t.Run("remove cascades", func(t *testing.T) {
		s := NewStore()
		require.True(t, s.Add(vec(0, 0, 0), DefaultColor, ShapeBox, DefaultDims))
		l2 := s.AddLayer()
		for x := 1.0; x <= 5; x++ {
			require.True(t, s.Add(vec(x, 0, 0), DefaultColor, ShapeBox, DefaultDims))
		}
		require.Equal(t, 6, s.Snapshot().Len())

		require.True(t, s.RemoveLayer(l2.ID))

		snap := s.Snapshot()
		assert.Equal(t, 1, snap.Len())
		_, exists := snap.Layer(l2.ID)
		assert.False(t, exists)
		assert.Equal(t, DefaultLayerID, snap.ActiveLayerID(), "falls back to the first remaining layer")
		for x := 1; x <= 5; x++ {
			assert.False(t, snap.Occupied(Cell{x, 0, 0}))
		}
	})

	t.Run("removing an inactive layer keeps activation", func(t *testing.T) {
		s := NewStore()
		l2 := s.AddLayer()
		require.True(t, s.RemoveLayer(DefaultLayerID))
		assert.Equal(t, l2.ID, s.Snapshot().ActiveLayerID())
	})

	t.Run("remove last layer leaves none active", func(t *testing.T) {
		s := NewStore()
		require.True(t, s.RemoveLayer(DefaultLayerID))
		assert.Empty(t, s.Snapshot().Layers())
		assert.Empty(t, s.Snapshot().ActiveLayerID())
		assert.False(t, s.RemoveLayer(DefaultLayerID))
	})

	t.Run("rename trims and ignores blank", func(t *testing.T) {
		s := NewStore()
		assert.True(t, s.RenameLayer(DefaultLayerID, "  Walls  "))
		assert.False(t, s.RenameLayer(DefaultLayerID, "   \t"))
		assert.False(t, s.RenameLayer("missing", "Roof"))

		l, _ := s.Snapshot().Layer(DefaultLayerID)
		assert.Equal(t, "Walls", l.Name)
	})

	t.Run("set active", func(t *testing.T) {
		s := NewStore()
		s.AddLayer()
		assert.True(t, s.SetActiveLayer(DefaultLayerID))
		assert.Equal(t, DefaultLayerID, s.Snapshot().ActiveLayerID())
		assert.False(t, s.SetActiveLayer("missing"))
		assert.Equal(t, DefaultLayerID, s.Snapshot().ActiveLayerID())
	})
}

func TestStore_Visibility(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(vec(0, 0, 0), DefaultColor, ShapeBox, DefaultDims))
	l2 := s.AddLayer()
	require.True(t, s.Add(vec(1, 0, 0), DefaultColor, ShapeBox, DefaultDims))

	assert.Len(t, s.VisibleVoxels(), 2)

	require.True(t, s.ToggleVisibility(DefaultLayerID))
	visible := s.VisibleVoxels()
	require.Len(t, visible, 1)
	assert.Equal(t, l2.ID, visible[0].LayerID)

	// Hidden voxels still occupy their cell.
	assert.False(t, s.Add(vec(0, 0, 0), DefaultColor, ShapeBox, DefaultDims))

	require.True(t, s.SetVisibility(DefaultLayerID, true))
	assert.Len(t, s.VisibleVoxels(), 2)
	assert.False(t, s.ToggleVisibility("missing"))
}

func TestStore_ClearAll(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(vec(0, 0, 0), DefaultColor, ShapeBox, DefaultDims))
	s.AddLayer()
	s.AddLayer()
	before := s.Snapshot().Version()

	s.ClearAll()

	snap := s.Snapshot()
	assert.Zero(t, snap.Len())
	assert.Equal(t, []Layer{{ID: DefaultLayerID, Name: DefaultLayerName, Visible: true}}, snap.Layers())
	assert.Equal(t, DefaultLayerID, snap.ActiveLayerID())
	assert.Greater(t, snap.Version(), before)
}

func TestSnapshot_Immutable(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(vec(0, 0, 0), DefaultColor, ShapeBox, DefaultDims))
	snap := s.Snapshot()

	voxels := snap.Voxels()
	voxels[0].Position = Cell{9, 9, 9}
	layers := snap.Layers()
	layers[0].Name = "changed"

	v := snap.Voxels()[0]
	assert.Equal(t, Cell{0, 0, 0}, v.Position)
	assert.Equal(t, DefaultLayerName, snap.Layers()[0].Name)

	require.True(t, s.Add(vec(1, 0, 0), DefaultColor, ShapeBox, DefaultDims))
	assert.Equal(t, 1, snap.Len(), "old snapshot is unaffected by later writes")
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := NewStore(sequentialIDs())
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		n := 0
		for x := -16; x <= 16; x++ {
			if s.Add(vec(float64(x), 0, 0), DefaultColor, ShapeBox, DefaultDims) {
				n++
				s.Move(fmt.Sprintf("id-%d", n), vec(float64(x), 1, 0))
			}
		}
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				snap := s.Snapshot()
				assert.Len(t, snap.Visible(), snap.Len())
			}
		}()
	}

	wg.Wait()
	assertInvariants(t, s.Snapshot())
	assert.Equal(t, 33, s.Snapshot().Len())
}

func ids(voxels []Voxel) []string {
	out := make([]string, len(voxels))
	for i, v := range voxels {
		out[i] = v.ID
	}
	return out
}
