package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/scene"
)

// recordingScene wraps a real store and captures every batch it receives.
type recordingScene struct {
	*scene.Store
	batches [][]scene.Entry
}

func (r *recordingScene) AddBatch(entries []scene.Entry) int {
	r.batches = append(r.batches, entries)
	return r.Store.AddBatch(entries)
}

func newRecording() *recordingScene {
	return &recordingScene{Store: scene.NewStore()}
}

func at(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }

func positions(entries []scene.Entry) []scene.Cell {
	out := make([]scene.Cell, len(entries))
	for i, e := range entries {
		out[i] = e.Position
	}
	return out
}

func TestMachine_Defaults(t *testing.T) {
	m := NewMachine(newRecording())
	s := m.Session()

	assert.Equal(t, ModeAdd, s.Mode)
	assert.Equal(t, scene.DefaultColor, s.Color)
	assert.Equal(t, scene.ShapeBox, s.Shape)
	assert.Equal(t, scene.DefaultDims, s.Dimensions)
	assert.Nil(t, s.Anchor)
	assert.Empty(t, s.SelectedID)
}

func TestMachine_Add(t *testing.T) {
	rec := newRecording()
	m := NewMachine(rec)
	require.NoError(t, m.SetColor("#ff0000"))
	require.NoError(t, m.SetShape(scene.ShapeCone))
	require.NoError(t, m.SetDimensions(scene.Dims{1, 2, 3}))

	res := m.PrimaryAction(at(0.4, 1.6, 0))
	assert.Equal(t, Result{Mode: ModeAdd, Outcome: OutcomeAdded, Count: 1}, res)

	v, ok := rec.Snapshot().At(scene.Cell{X: 0, Y: 2, Z: 0})
	require.True(t, ok)
	assert.Equal(t, "#ff0000", v.Color)
	assert.Equal(t, scene.ShapeCone, v.Shape)
	assert.Equal(t, scene.Dims{1, 2, 3}, v.Dimensions)

	res = m.PrimaryAction(at(0, 2, 0))
	assert.Equal(t, OutcomeNone, res.Outcome, "occupied cell")
}

func TestMachine_Remove(t *testing.T) {
	rec := newRecording()
	m := NewMachine(rec)
	m.PrimaryAction(at(1, 1, 1))

	require.NoError(t, m.SetMode(ModeRemove))
	assert.Equal(t, OutcomeRemoved, m.PrimaryAction(at(1.2, 0.9, 1)).Outcome)
	assert.Equal(t, OutcomeNone, m.PrimaryAction(at(1, 1, 1)).Outcome)
	assert.Zero(t, rec.Snapshot().Len())
}

func TestMachine_Line(t *testing.T) {
	rec := newRecording()
	m := NewMachine(rec)
	require.NoError(t, m.SetMode(ModeLine))

	res := m.PrimaryAction(at(0.2, 0, 0))
	assert.Equal(t, OutcomeAnchored, res.Outcome)
	require.NotNil(t, m.Session().Anchor)
	assert.Equal(t, scene.Cell{}, *m.Session().Anchor)
	assert.Zero(t, rec.Snapshot().Len())

	res = m.PrimaryAction(at(3, 0, 0))
	assert.Equal(t, Result{Mode: ModeLine, Outcome: OutcomeFilled, Count: 4}, res)

	require.Len(t, rec.batches, 1)
	assert.Equal(t, []scene.Cell{{X: 0}, {X: 1}, {X: 2}, {X: 3}}, positions(rec.batches[0]))
	for _, e := range rec.batches[0] {
		assert.Equal(t, scene.DefaultDims, e.Dimensions)
		assert.Equal(t, scene.DefaultLayerID, e.LayerID)
	}
	assert.Nil(t, m.Session().Anchor, "anchor cleared after commit")

	t.Run("repeated cells are admitted once", func(t *testing.T) {
		m.PrimaryAction(at(0, 5, 0))
		res := m.PrimaryAction(at(2, 7, 2))

		require.Len(t, rec.batches, 2)
		assert.Len(t, rec.batches[1], 4)
		assert.Equal(t, 3, res.Count)
	})
}

func TestMachine_Rectangle(t *testing.T) {
	rec := newRecording()
	m := NewMachine(rec)
	require.NoError(t, m.SetMode(ModeRectangle))

	m.PrimaryAction(at(0, 0, 0))
	res := m.PrimaryAction(at(1, 1, 0))

	assert.Equal(t, 4, res.Count)
	require.Len(t, rec.batches, 1)
	assert.ElementsMatch(t, []scene.Cell{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1},
	}, positions(rec.batches[0]))
}

func TestMachine_ModeSwitchClearsAnchor(t *testing.T) {
	m := NewMachine(newRecording())
	require.NoError(t, m.SetMode(ModeLine))
	m.PrimaryAction(at(0, 0, 0))
	require.NotNil(t, m.Session().Anchor)

	require.NoError(t, m.SetMode(ModeAdd))
	require.NoError(t, m.SetMode(ModeLine))
	assert.Nil(t, m.Session().Anchor)

	assert.Equal(t, OutcomeAnchored, m.PrimaryAction(at(2, 0, 0)).Outcome, "must re-anchor")

	t.Run("line to rectangle", func(t *testing.T) {
		require.NoError(t, m.SetMode(ModeRectangle))
		assert.Nil(t, m.Session().Anchor)
	})

	t.Run("same mode keeps anchor", func(t *testing.T) {
		m.PrimaryAction(at(0, 0, 0))
		require.NoError(t, m.SetMode(ModeRectangle))
		assert.NotNil(t, m.Session().Anchor)
	})
}

func TestMachine_Move(t *testing.T) {
	rec := newRecording()
	m := NewMachine(rec)
	m.PrimaryAction(at(0, 0, 0))
	m.PrimaryAction(at(4, 0, 0))
	require.NoError(t, m.SetMode(ModeMove))

	t.Run("empty cell selects nothing", func(t *testing.T) {
		assert.Equal(t, OutcomeNone, m.PrimaryAction(at(8, 8, 8)).Outcome)
		assert.Empty(t, m.Session().SelectedID)
	})

	t.Run("select then move", func(t *testing.T) {
		target, _ := rec.Snapshot().At(scene.Cell{})
		assert.Equal(t, OutcomeSelected, m.PrimaryAction(at(0.3, 0, 0)).Outcome)
		assert.Equal(t, target.ID, m.Session().SelectedID)

		assert.Equal(t, OutcomeMoved, m.PrimaryAction(at(0, 5, 0)).Outcome)
		assert.Empty(t, m.Session().SelectedID)

		v, _ := rec.Snapshot().Voxel(target.ID)
		assert.Equal(t, scene.Cell{Y: 5}, v.Position)
	})

	t.Run("blocked move still clears selection", func(t *testing.T) {
		m.PrimaryAction(at(0, 5, 0))
		require.NotEmpty(t, m.Session().SelectedID)

		assert.Equal(t, OutcomeNone, m.PrimaryAction(at(4, 0, 0)).Outcome)
		assert.Empty(t, m.Session().SelectedID)
		assert.Equal(t, 2, rec.Snapshot().Len())
	})

	t.Run("leaving move clears selection", func(t *testing.T) {
		m.PrimaryAction(at(4, 0, 0))
		require.NotEmpty(t, m.Session().SelectedID)
		require.NoError(t, m.SetMode(ModeAdd))
		assert.Empty(t, m.Session().SelectedID)
	})

	t.Run("only the active layer is selectable", func(t *testing.T) {
		require.NoError(t, m.SetMode(ModeMove))
		rec.AddLayer()
		assert.Equal(t, OutcomeNone, m.PrimaryAction(at(4, 0, 0)).Outcome)
	})
}

func TestMachine_NoActiveLayer(t *testing.T) {
	rec := newRecording()
	require.True(t, rec.RemoveLayer(scene.DefaultLayerID))
	m := NewMachine(rec)

	for _, mode := range Modes {
		require.NoError(t, m.SetMode(mode))
		assert.Equal(t, OutcomeNone, m.PrimaryAction(at(0, 0, 0)).Outcome, "mode %s", mode)
		assert.Nil(t, m.Session().Anchor, "mode %s", mode)
	}
	assert.Empty(t, rec.batches)
}

func TestMachine_Setters(t *testing.T) {
	m := NewMachine(newRecording())

	assert.ErrorIs(t, m.SetMode("paint"), ErrUnknownMode)
	assert.Equal(t, ModeAdd, m.Session().Mode)

	assert.ErrorIs(t, m.SetColor("nope"), scene.ErrInvalidColor)
	require.NoError(t, m.SetColor("Gold"))
	assert.Equal(t, "#ffd700", m.Session().Color)

	assert.ErrorIs(t, m.SetShape(scene.Shape(42)), scene.ErrUnknownShape)
	assert.ErrorIs(t, m.SetDimensions(scene.Dims{1, 0, 1}), ErrInvalidDimensions)
	assert.Equal(t, scene.DefaultDims, m.Session().Dimensions)
}

func TestMachine_Preview(t *testing.T) {
	m := NewMachine(newRecording())
	assert.Nil(t, m.Preview(at(3, 0, 0)))

	require.NoError(t, m.SetMode(ModeLine))
	m.PrimaryAction(at(0, 0, 0))
	assert.Len(t, m.Preview(at(3, 0, 0)), 4)

	require.NoError(t, m.SetMode(ModeRectangle))
	m.PrimaryAction(at(0, 0, 0))
	assert.Len(t, m.Preview(at(1, 1, 1)), 8)
}
