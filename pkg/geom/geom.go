// Package geom provides the integer geometry primitives shared by the layout
// engine: sizes, rectangles, and signed placement offsets.
//
// All dimension math is plain int arithmetic with explicit clamping at the
// boundaries the layout engine defines. Dimensions are validated to stay in
// [1, MaxDimension], which keeps every product of two dimensions inside the
// int64 range on all supported platforms.
package geom

// MaxDimension is the largest width or height the engine accepts.
// Inputs beyond this are clamped by callers before layout computation.
const MaxDimension = 1 << 30

// Size is a width × height pair in pixels.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Sz is shorthand for constructing a Size.
func Sz(w, h int) Size { return Size{W: w, H: h} }

// IsZero reports whether either dimension is zero or negative.
func (s Size) IsZero() bool { return s.W <= 0 || s.H <= 0 }

// Swap returns the size with width and height exchanged.
func (s Size) Swap() Size { return Size{W: s.H, H: s.W} }

// Max returns the component-wise maximum of s and o.
func (s Size) Max(o Size) Size {
	if o.W > s.W {
		s.W = o.W
	}
	if o.H > s.H {
		s.H = o.H
	}
	return s
}

// Fits reports whether s fits inside o on both axes.
func (s Size) Fits(o Size) bool { return s.W <= o.W && s.H <= o.H }

// Offset is a signed placement offset on a canvas. Negative components mean
// the placed image extends past the canvas edge and is clipped by the
// renderer.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Off is shorthand for constructing an Offset.
func Off(x, y int) Offset { return Offset{X: x, Y: y} }

// Add returns the component-wise sum of two offsets.
func (o Offset) Add(p Offset) Offset { return Offset{X: o.X + p.X, Y: o.Y + p.Y} }

// Rect is an axis-aligned rectangle in pixel coordinates.
// X and Y may be negative only in intermediate viewport math; every Rect
// stored in a computed layout has a non-negative origin.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Rc is shorthand for constructing a Rect.
func Rc(x, y, w, h int) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// IsFull reports whether the rect covers the entire w×h area from the origin,
// meaning a crop to it is a no-op.
func (r Rect) IsFull(w, h int) bool {
	return r.X == 0 && r.Y == 0 && r.W == w && r.H == h
}

// ClampTo confines the rect to (0, 0, maxW, maxH). Width and height are
// clamped to at least 1 so a degenerate crop still selects a pixel.
func (r Rect) ClampTo(maxW, maxH int) Rect {
	x := min(max(r.X, 0), max(maxW-1, 0))
	y := min(max(r.Y, 0), max(maxH-1, 0))
	w := max(min(r.W, maxW-x), 1)
	h := max(min(r.H, maxH-y), 1)
	return Rect{X: x, Y: y, W: w, H: h}
}

// Intersect returns the overlap of two rects. The boolean is false when they
// do not overlap; the returned rect is then empty.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.W, o.X+o.W)
	y1 := min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// Translate returns the rect moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// ClampDimension confines a dimension to [1, MaxDimension].
func ClampDimension(v int) int {
	return min(max(v, 1), MaxDimension)
}

// RoundHalfAway rounds to the nearest integer with halves away from zero.
// This is the rounding mode used whenever a float scale factor returns to
// integer pixel space.
func RoundHalfAway(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}

// ScaleDim scales a dimension by factor and rounds, clamping the result to
// at least 1.
func ScaleDim(dim int, factor float64) int {
	return max(RoundHalfAway(float64(dim)*factor), 1)
}
