package scene

import (
	"errors"
	"fmt"
)

// ErrUnknownShape is returned when parsing a shape name that is not defined.
var ErrUnknownShape = errors.New("unknown shape")

// Shape is the primitive a voxel is drawn as.
type Shape uint8

const (
	ShapeBox Shape = iota
	ShapeSphere
	ShapeCone
	ShapeWindow
	ShapeDoor

	numShapes
)

var shapeNames = [...]string{
	ShapeBox:    "box",
	ShapeSphere: "sphere",
	ShapeCone:   "cone",
	ShapeWindow: "window",
	ShapeDoor:   "door",
}

// Shapes lists every shape in display order.
func Shapes() []Shape {
	out := make([]Shape, 0, numShapes)
	for s := Shape(0); s < numShapes; s++ {
		out = append(out, s)
	}
	return out
}

func (s Shape) String() string {
	if s < numShapes {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// Valid reports whether s is one of the defined shapes.
func (s Shape) Valid() bool {
	return s < numShapes
}

// ParseShape returns the shape with the given name.
func ParseShape(name string) (Shape, error) {
	for s, n := range shapeNames {
		if n == name {
			return Shape(s), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

func (s Shape) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownShape, uint8(s))
	}
	return []byte(shapeNames[s]), nil
}

func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Dims is the per-axis scale of a voxel.
type Dims [3]float64

// DefaultDims is a unit cube.
var DefaultDims = Dims{1, 1, 1}

// Valid reports whether every axis is strictly positive.
func (d Dims) Valid() bool {
	return d[0] > 0 && d[1] > 0 && d[2] > 0
}

// Primitive is the mesh family a renderer should build.
type Primitive string

const (
	PrimitiveBox    Primitive = "box"
	PrimitiveSphere Primitive = "sphere"
	PrimitiveCone   Primitive = "cone"
)

// Geometry is everything a renderer needs to draw one voxel.
type Geometry struct {
	Primitive Primitive `json:"primitive"`
	Scale     Dims      `json:"scale"`
	Color     string    `json:"color"`
	Opacity   float64   `json:"opacity"`
}

// Fixed colors for the architectural shapes.
const (
	WindowColor = "#3b82f6"
	DoorColor   = "#964b00"
)

type geometryFunc func(d Dims, color string, selected bool) Geometry

var shapeGeometry = [...]geometryFunc{
	ShapeBox:    solid(PrimitiveBox),
	ShapeSphere: solid(PrimitiveSphere),
	ShapeCone:   solid(PrimitiveCone),
	ShapeWindow: func(d Dims, _ string, selected bool) Geometry {
		opacity := 0.5
		if selected {
			opacity = 0.3
		}
		return Geometry{
			Primitive: PrimitiveBox,
			Scale:     Dims{d[0] * 1.2, d[1] * 1.2, 0.2},
			Color:     WindowColor,
			Opacity:   opacity,
		}
	},
	ShapeDoor: func(d Dims, _ string, selected bool) Geometry {
		return Geometry{
			Primitive: PrimitiveBox,
			Scale:     Dims{0.8, d[1] * 1.5, 0.2},
			Color:     DoorColor,
			Opacity:   selectedOpacity(selected),
		}
	},
}

// Fails to compile when a shape is added without a geometry entry.
var _ = [1]struct{}{}[len(shapeGeometry)-int(numShapes)]

func solid(p Primitive) geometryFunc {
	return func(d Dims, color string, selected bool) Geometry {
		return Geometry{
			Primitive: p,
			Scale:     d,
			Color:     color,
			Opacity:   selectedOpacity(selected),
		}
	}
}

func selectedOpacity(selected bool) float64 {
	if selected {
		return 0.5
	}
	return 1
}

// GeometryFor maps a shape and its attributes to render parameters. Unknown
// shapes fall back to a box.
func GeometryFor(s Shape, d Dims, color string, selected bool) Geometry {
	if !s.Valid() {
		s = ShapeBox
	}
	return shapeGeometry[s](d, color, selected)
}
