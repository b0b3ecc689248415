package interaction

import (
	"math"

	"github.com/vk/pipegraph/internal/dataflow"
)

// GridSteps is the number of snap positions across each axis.
const GridSteps = 21

// DefaultNodeSize is the box size of a rendered node in pixels.
var DefaultNodeSize = Size{W: 120, H: 40}

// Point is a pixel coordinate within the container.
type Point struct {
	X, Y float64
}

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a width and height in pixels.
type Size struct {
	W, H float64
}

// Rect is a box given by its top-left corner and size.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Center is the middle of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Orientation is the container's flow direction.
type Orientation int

const (
	// Wide containers flow left to right.
	Wide Orientation = iota
	// Tall containers flow top to bottom.
	Tall
)

func (o Orientation) String() string {
	if o == Tall {
		return "tall"
	}
	return "wide"
}

// OrientationOf returns Tall exactly when s is taller than it is wide.
func OrientationOf(s Size) Orientation {
	if s.H > s.W {
		return Tall
	}
	return Wide
}

// Snap clamps value to [0, scale] and moves it to the centre of its grid
// cell, with steps cells across scale.
func Snap(value, scale float64, steps int) float64 {
	if scale <= 0 || steps <= 0 {
		return 0
	}
	step := scale / float64(steps)
	cell := math.Floor(clamp(value, 0, scale) / step)
	cell = math.Min(cell, float64(steps-1))
	return (cell + 0.5) * step
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// normalize converts a pixel point into container coordinates in [0,1].
func normalize(p Point, s Size) dataflow.Position {
	return dataflow.Position{X: clamp(p.X/s.W, 0, 1), Y: clamp(p.Y/s.H, 0, 1)}
}

// snapped converts a pixel point into a grid aligned normalized position.
func snapped(p Point, s Size) dataflow.Position {
	return dataflow.Position{X: Snap(p.X, s.W, GridSteps) / s.W, Y: Snap(p.Y, s.H, GridSteps) / s.H}
}

func swapAxes(p dataflow.Position) dataflow.Position {
	return dataflow.Position{X: p.Y, Y: p.X}
}

// DirectionPolicy decides whether the source of a connect gesture becomes
// the parent when neither node is already an ancestor of the other.
type DirectionPolicy func(o Orientation, source Rect, release Point) bool

// GeometricDirection makes the source the parent when the pointer was
// released after the source's top-left corner along the flow axis.
func GeometricDirection(o Orientation, source Rect, release Point) bool {
	if o == Tall {
		return release.Y > source.Y
	}
	return release.X > source.X
}

// SourceIsParent always makes the dragged node the parent.
func SourceIsParent(Orientation, Rect, Point) bool {
	return true
}
