package nodegraph

import "math"

// Point is a 2D coordinate, in world or screen space depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a rendered node's measured extent.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle. For viewports it is the editing
// surface's bounding box in screen coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// ScreenToWorld converts a screen pixel coordinate into graph coordinates
// given the viewport bounds, the pan offset and the zoom scale.
// A non-positive scale is treated as 1.
func ScreenToWorld(p Point, viewport Rect, pan Point, scale float64) Point {
	if scale <= 0 {
		scale = 1
	}
	return Point{
		X: (p.X - viewport.X - pan.X) / scale,
		Y: (p.Y - viewport.Y - pan.Y) / scale,
	}
}

// WorldToScreen is the inverse of ScreenToWorld.
func WorldToScreen(p Point, viewport Rect, pan Point, scale float64) Point {
	if scale <= 0 {
		scale = 1
	}
	return Point{
		X: p.X*scale + pan.X + viewport.X,
		Y: p.Y*scale + pan.Y + viewport.Y,
	}
}

// SnapToGrid rounds each coordinate to the nearest multiple of cell.
// A cell size of zero or less returns p unchanged.
func SnapToGrid(p Point, cell float64) Point {
	if cell <= 0 {
		return p
	}
	return Point{
		X: math.Round(p.X/cell) * cell,
		Y: math.Round(p.Y/cell) * cell,
	}
}
