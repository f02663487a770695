package tool

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/scene"
)

// Line samples floor(d)+1 evenly spaced points from a to b, where d is the
// Euclidean distance between them, and rounds each to a cell. Out-of-bounds
// cells are dropped; repeated cells are kept. Only samples whose point can
// round into the grid are visited, so far endpoints cost no more than near
// ones.
func Line(a, b scene.Cell) []scene.Cell {
	av, bv := a.Vec(), b.Vec()
	d := r3.Norm(r3.Sub(bv, av))
	if d == 0 {
		if a.InBounds() {
			return []scene.Cell{a}
		}
		return nil
	}

	lo, hi, ok := clip(av, bv)
	if !ok {
		return nil
	}
	// One sample of slack each side; InBounds settles the edges.
	first := math.Max(0, math.Ceil(lo*d)-1)
	last := math.Min(math.Floor(d), math.Floor(hi*d)+1)

	var cells []scene.Cell
	for k := 0; k <= int(last-first); k++ {
		t := (first + float64(k)) / d
		c := scene.Round(lerp(av, bv, t))
		if c.InBounds() {
			cells = append(cells, c)
		}
	}
	return cells
}

// clip returns the parameter range [lo, hi] within [0, 1] where the segment
// a->b lies inside the grid box widened by half a cell, the region whose
// points round to in-bounds cells.
func clip(a, b r3.Vec) (lo, hi float64, ok bool) {
	const h = float64(scene.HalfGrid) + 0.5
	lo, hi = 0, 1
	slab := func(p, q, floor, ceil float64) bool {
		delta := q - p
		if delta == 0 {
			return p >= floor && p <= ceil
		}
		t1, t2 := (floor-p)/delta, (ceil-p)/delta
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		lo, hi = math.Max(lo, t1), math.Min(hi, t2)
		return lo <= hi
	}
	ok = slab(a.X, b.X, -h, h) &&
		slab(a.Y, b.Y, -0.5, float64(scene.GridSize)+0.5) &&
		slab(a.Z, b.Z, -h, h)
	return lo, hi, ok
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Box returns every in-bounds cell of the closed axis-aligned box spanned by
// a and b, ordered x, then y, then z.
func Box(a, b scene.Cell) []scene.Cell {
	// Clamp to the grid first; cells outside it would be dropped anyway.
	minX, maxX := max(min(a.X, b.X), -scene.HalfGrid), min(max(a.X, b.X), scene.HalfGrid)
	minY, maxY := max(min(a.Y, b.Y), 0), min(max(a.Y, b.Y), scene.GridSize)
	minZ, maxZ := max(min(a.Z, b.Z), -scene.HalfGrid), min(max(a.Z, b.Z), scene.HalfGrid)

	var cells []scene.Cell
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				c := scene.Cell{X: x, Y: y, Z: z}
				if c.InBounds() {
					cells = append(cells, c)
				}
			}
		}
	}
	return cells
}
