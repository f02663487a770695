// Package scene owns the voxel and layer state of the editor. Every mutation
// publishes a new immutable Snapshot; readers never observe partial updates.
package scene

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Grid bounds. X and Z are centred on the origin, Y starts at the ground plane.
const (
	GridSize = 32
	HalfGrid = GridSize / 2
)

// Cell is an integer grid position.
type Cell struct {
	X, Y, Z int
}

// Round snaps a continuous position to the nearest cell. Halves round up
// toward positive infinity on every axis.
func Round(p r3.Vec) Cell {
	return Cell{
		X: roundHalfUp(p.X),
		Y: roundHalfUp(p.Y),
		Z: roundHalfUp(p.Z),
	}
}

// roundLimit saturates rounding far outside the grid so the int conversion
// stays defined.
const roundLimit = 1 << 40

func roundHalfUp(v float64) int {
	r := math.Floor(v + 0.5)
	switch {
	case math.IsNaN(r), r > roundLimit:
		return roundLimit
	case r < -roundLimit:
		return -roundLimit
	}
	return int(r)
}

// InBounds reports whether c lies inside the editable volume.
func (c Cell) InBounds() bool {
	return abs(c.X) <= HalfGrid &&
		c.Y >= 0 && c.Y <= GridSize &&
		abs(c.Z) <= HalfGrid
}

// Vec returns the cell centre as a vector.
func (c Cell) Vec() r3.Vec {
	return r3.Vec{X: float64(c.X), Y: float64(c.Y), Z: float64(c.Z)}
}

// Key is the canonical string form of a cell.
func (c Cell) Key() string {
	return fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z)
}

func (c Cell) String() string {
	return "(" + c.Key() + ")"
}

// MarshalJSON encodes a cell as [x, y, z].
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{c.X, c.Y, c.Z})
}

// UnmarshalJSON decodes a cell from [x, y, z].
func (c *Cell) UnmarshalJSON(data []byte) error {
	var v [3]int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Cell{X: v[0], Y: v[1], Z: v[2]}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
