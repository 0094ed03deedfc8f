// Package geom holds the geometric primitives shared by the style resolver,
// layout nodes, and the pagination driver: absolute rectangles, measured
// sizes, and the constraint pairs layout is solved against.
package geom

import "math"

// Rect is an absolute-positioned box on a page. Origin is top-left; y
// increases downward. Units are points.
type Rect struct {
	X, Y, Width, Height float64
}

// Bottom returns the y coordinate of the rectangle's lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Right returns the x coordinate of the rectangle's right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Inset shrinks the rectangle by the given amounts on each side.
func (r Rect) Inset(top, right, bottom, left float64) Rect {
	return Rect{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  math.Max(0, r.Width-left-right),
		Height: math.Max(0, r.Height-top-bottom),
	}
}

// Size is a measured content size, independent of position.
type Size struct {
	W, H float64
}

// BoxConstraints bounds a measure/layout call. Min/Max may be +/-Inf.
type BoxConstraints struct {
	MinW, MaxW float64
	MinH, MaxH float64
}

// Unbounded returns constraints with no upper bound in either axis, used
// when measuring intrinsic (max-content) sizes.
func Unbounded() BoxConstraints {
	return BoxConstraints{MaxW: math.Inf(1), MaxH: math.Inf(1)}
}

// Tight returns constraints that pin both axes to an exact size.
func Tight(w, h float64) BoxConstraints {
	return BoxConstraints{MinW: w, MaxW: w, MinH: h, MaxH: h}
}

// TightWidth returns constraints with an exact width and a height bounded
// above by h, the shape the pagination driver hands to the root node on
// every page.
func TightWidth(w, h float64) BoxConstraints {
	return BoxConstraints{MinW: w, MaxW: w, MinH: 0, MaxH: h}
}

// Clamp fits w/h within the constraints.
func (c BoxConstraints) Clamp(w, h float64) Size {
	return Size{W: clamp(w, c.MinW, c.MaxW), H: clamp(h, c.MinH, c.MaxH)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}
