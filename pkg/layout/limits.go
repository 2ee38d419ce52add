package layout

import "github.com/matzehuels/picplan/pkg/geom"

// AlignMode selects how a canvas is rounded to an alignment multiple.
type AlignMode uint8

const (
	// AlignCrop rounds the canvas down, trimming the right/bottom edges.
	AlignCrop AlignMode = iota
	// AlignExtend rounds the canvas up; the band beyond the original canvas
	// is filled by edge replication and reported as content size.
	AlignExtend
	// AlignDistort rounds to the nearest multiple and stretches the image to
	// match, changing the aspect ratio slightly.
	AlignDistort
)

// String returns the mode name.
func (m AlignMode) String() string {
	switch m {
	case AlignCrop:
		return "crop"
	case AlignExtend:
		return "extend"
	case AlignDistort:
		return "distort"
	}
	return "unknown"
}

// Align rounds each canvas axis to a multiple of X and Y (both ≥ 1).
type Align struct {
	Mode AlignMode `json:"mode"`
	X    int       `json:"x"`
	Y    int       `json:"y"`
}

// CropAlign aligns by trimming.
func CropAlign(x, y int) Align { return Align{Mode: AlignCrop, X: x, Y: y} }

// ExtendAlign aligns by edge extension.
func ExtendAlign(x, y int) Align { return Align{Mode: AlignExtend, X: x, Y: y} }

// DistortAlign aligns by stretching.
func DistortAlign(x, y int) Align { return Align{Mode: AlignDistort, X: x, Y: y} }

// OutputLimits bounds and aligns the final canvas. Applied in fixed order:
// max cap, then min floor (with the max cap reapplied), then alignment.
// Alignment may legitimately push the canvas back outside [min, max].
type OutputLimits struct {
	Max   *geom.Size `json:"max,omitempty"`
	Min   *geom.Size `json:"min,omitempty"`
	Align *Align     `json:"align,omitempty"`
}

// IsZero reports whether no limit is set.
func (o OutputLimits) IsZero() bool { return o.Max == nil && o.Min == nil && o.Align == nil }

// Apply runs the limits pipeline over a layout. The returned contentSize is
// non-nil only when an extend alignment grew the canvas; it records the real
// content dimensions inside the aligned canvas.
func (o OutputLimits) Apply(l Layout) (out Layout, contentSize *geom.Size) {
	l = o.applyMax(l)
	l = o.applyMin(l)
	return o.applyAlign(l)
}

// applyMax proportionally caps the canvas at Max.
func (o OutputLimits) applyMax(l Layout) Layout {
	if o.Max == nil || l.Canvas.Fits(*o.Max) {
		return l
	}
	s := min(
		float64(o.Max.W)/float64(l.Canvas.W),
		float64(o.Max.H)/float64(l.Canvas.H),
	)
	return scaleLayout(l, s)
}

// applyMin proportionally floors the canvas at Min, then reapplies the max
// cap so Max always wins.
func (o OutputLimits) applyMin(l Layout) Layout {
	if o.Min == nil || (l.Canvas.W >= o.Min.W && l.Canvas.H >= o.Min.H) {
		return l
	}
	s := max(
		float64(o.Min.W)/float64(l.Canvas.W),
		float64(o.Min.H)/float64(l.Canvas.H),
	)
	return o.applyMax(scaleLayout(l, s))
}

// scaleLayout scales the output geometry of a layout by s: resize target,
// canvas, placement, and the source-crop dimensions (its origin stays put so
// the crop anchor is preserved).
func scaleLayout(l Layout, s float64) Layout {
	if l.IsBlank() {
		l.Canvas = geom.Sz(geom.ScaleDim(l.Canvas.W, s), geom.ScaleDim(l.Canvas.H, s))
		return l
	}
	l.ResizeTo = geom.Sz(geom.ScaleDim(l.ResizeTo.W, s), geom.ScaleDim(l.ResizeTo.H, s))
	l.Canvas = geom.Sz(geom.ScaleDim(l.Canvas.W, s), geom.ScaleDim(l.Canvas.H, s))
	l.Canvas = l.Canvas.Max(l.ResizeTo)
	l.Placement = geom.Off(
		geom.RoundHalfAway(float64(l.Placement.X)*s),
		geom.RoundHalfAway(float64(l.Placement.Y)*s),
	)
	if l.SourceCrop != nil {
		r := *l.SourceCrop
		r.W = geom.ScaleDim(r.W, s)
		r.H = geom.ScaleDim(r.H, s)
		r = r.ClampTo(l.Source.W, l.Source.H)
		l.SourceCrop = &r
	}
	return l
}

// applyAlign rounds the canvas per the align mode.
func (o OutputLimits) applyAlign(l Layout) (Layout, *geom.Size) {
	if o.Align == nil {
		return l, nil
	}
	ax := max(o.Align.X, 1)
	ay := max(o.Align.Y, 1)

	switch o.Align.Mode {
	case AlignCrop:
		cw := max(l.Canvas.W/ax*ax, ax)
		ch := max(l.Canvas.H/ay*ay, ay)
		l.Canvas = geom.Sz(cw, ch)
		// Trim the right/bottom overhang of the placed image.
		if l.Placement.X+l.ResizeTo.W > cw {
			l.ResizeTo.W = max(cw-l.Placement.X, 1)
		}
		if l.Placement.Y+l.ResizeTo.H > ch {
			l.ResizeTo.H = max(ch-l.Placement.Y, 1)
		}
		return l, nil

	case AlignExtend:
		cw := (l.Canvas.W + ax - 1) / ax * ax
		ch := (l.Canvas.H + ay - 1) / ay * ay
		if cw == l.Canvas.W && ch == l.Canvas.H {
			return l, nil
		}
		content := l.Canvas
		l.Canvas = geom.Sz(cw, ch)
		l.Placement = geom.Offset{}
		return l, &content

	case AlignDistort:
		cw := roundToMultiple(l.Canvas.W, ax)
		ch := roundToMultiple(l.Canvas.H, ay)
		sx := float64(cw) / float64(l.Canvas.W)
		sy := float64(ch) / float64(l.Canvas.H)
		if !l.IsBlank() {
			l.ResizeTo = geom.Sz(geom.ScaleDim(l.ResizeTo.W, sx), geom.ScaleDim(l.ResizeTo.H, sy))
			l.Placement = geom.Off(
				geom.RoundHalfAway(float64(l.Placement.X)*sx),
				geom.RoundHalfAway(float64(l.Placement.Y)*sy),
			)
		}
		l.Canvas = geom.Sz(cw, ch)
		l.Canvas = l.Canvas.Max(l.ResizeTo)
		return l, nil
	}
	return l, nil
}

// roundToMultiple rounds v to the nearest positive multiple of m.
func roundToMultiple(v, m int) int {
	return max((v+m/2)/m*m, m)
}
