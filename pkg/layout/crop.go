package layout

import (
	"math"

	"github.com/matzehuels/picplan/pkg/geom"
)

// cropKind discriminates SourceCrop variants.
type cropKind uint8

const (
	cropPixels cropKind = iota
	cropPercent
)

// SourceCrop selects a region of the source before a constraint applies,
// either in absolute pixels or as fractions of the source dimensions.
// The zero value selects the full source.
type SourceCrop struct {
	kind cropKind
	px   geom.Rect
	// fractional coordinates for cropPercent, each in [0, 1]
	fx, fy, fw, fh float64
}

// CropPixels returns a pixel-coordinate crop.
func CropPixels(x, y, w, h int) SourceCrop {
	return SourceCrop{kind: cropPixels, px: geom.Rc(x, y, w, h)}
}

// CropRect returns a pixel-coordinate crop from a Rect.
func CropRect(r geom.Rect) SourceCrop {
	return SourceCrop{kind: cropPixels, px: r}
}

// CropPercent returns a fractional crop. x and y locate the top-left corner,
// w and h size the region, all as fractions of the source dimensions.
// Out-of-range values clamp at resolution.
func CropPercent(x, y, w, h float64) SourceCrop {
	return SourceCrop{kind: cropPercent, fx: x, fy: y, fw: w, fh: h}
}

// MarginPercent crops an equal fraction from every edge.
// MarginPercent(0.1) removes 10% per side, keeping the center 80%.
func MarginPercent(margin float64) SourceCrop {
	keep := max(1-2*margin, 0)
	return CropPercent(margin, margin, keep, keep)
}

// MarginsPercent crops specific fractions per edge in CSS order
// (top, right, bottom, left).
func MarginsPercent(top, right, bottom, left float64) SourceCrop {
	return CropPercent(left, top, max(1-left-right, 0), max(1-top-bottom, 0))
}

// Resolve converts the crop to pixel coordinates for the given source size,
// clamped to bounds with a minimum dimension of 1.
func (c SourceCrop) Resolve(sourceW, sourceH int) geom.Rect {
	switch c.kind {
	case cropPercent:
		x := geom.RoundHalfAway(float64(sourceW) * clamp01(c.fx))
		y := geom.RoundHalfAway(float64(sourceH) * clamp01(c.fy))
		w := geom.RoundHalfAway(float64(sourceW) * clamp01(c.fw))
		h := geom.RoundHalfAway(float64(sourceH) * clamp01(c.fh))
		return geom.Rc(x, y, w, h).ClampTo(sourceW, sourceH)
	default:
		return c.px.ClampTo(sourceW, sourceH)
	}
}

// Region converts the crop into the equivalent region viewport.
func (c SourceCrop) Region(sourceW, sourceH int, color CanvasColor) Region {
	r := c.Resolve(sourceW, sourceH)
	return RegionCrop(r.X, r.Y, r.W, r.H, color)
}

func clamp01(v float64) float64 { return min(max(v, 0), 1) }

// RegionCoord is one edge coordinate of a region viewport, resolved as
// floor(dimension · Percent) + Pixels. The result is signed: it may be
// negative (padding before the source) or exceed the source dimension
// (padding after it).
type RegionCoord struct {
	Percent float64 `json:"percent"`
	Pixels  int     `json:"pixels"`
}

// Px returns a pure pixel coordinate.
func Px(pixels int) RegionCoord { return RegionCoord{Pixels: pixels} }

// Pct returns a pure fractional coordinate.
func Pct(percent float64) RegionCoord { return RegionCoord{Percent: percent} }

// PctPx returns a fractional coordinate with a pixel offset.
func PctPx(percent float64, pixels int) RegionCoord {
	return RegionCoord{Percent: percent, Pixels: pixels}
}

// Resolve evaluates the coordinate against a source dimension.
func (c RegionCoord) Resolve(dim int) int {
	return int(math.Floor(float64(dim)*c.Percent)) + c.Pixels
}

// Region is a viewport over the source described by four edge coordinates.
// It unifies crop and pad: edges inside the source crop, edges outside it
// add padding filled with Color.
type Region struct {
	Left   RegionCoord `json:"left"`
	Top    RegionCoord `json:"top"`
	Right  RegionCoord `json:"right"`
	Bottom RegionCoord `json:"bottom"`
	Color  CanvasColor `json:"color"`
}

// RegionCrop returns a pure-crop region covering (x, y, w, h).
func RegionCrop(x, y, w, h int, color CanvasColor) Region {
	return Region{
		Left: Px(x), Top: Px(y), Right: Px(x + w), Bottom: Px(y + h),
		Color: color,
	}
}

// RegionPadded returns a region that pads every edge by n pixels.
func RegionPadded(n int, color CanvasColor) Region {
	return Region{
		Left: Px(-n), Top: Px(-n),
		Right: PctPx(1, n), Bottom: PctPx(1, n),
		Color: color,
	}
}

// RegionBlank returns a w×h viewport with no source overlap: a pure canvas
// of the fill color.
func RegionBlank(w, h int, color CanvasColor) Region {
	return Region{
		Left: Pct(1), Top: Pct(1),
		Right: PctPx(1, w), Bottom: PctPx(1, h),
		Color: color,
	}
}

// Viewport describes a resolved region: the viewport rectangle in signed
// display coordinates plus the portion overlapping the source.
type Viewport struct {
	// Rect is the viewport in display coordinates; the origin may be
	// negative and the extent may exceed the source.
	Rect geom.Rect
	// Content is the viewport ∩ source in display coordinates.
	// Empty when the viewport lies entirely outside the source.
	Content geom.Rect
	// ContentOffset locates Content inside the viewport.
	ContentOffset geom.Offset
	// Color fills the viewport outside Content.
	Color CanvasColor
}

// HasContent reports whether any of the source is visible in the viewport.
func (v Viewport) HasContent() bool { return !v.Content.IsEmpty() }

// IsPure reports whether the viewport is an in-bounds crop with no padding.
func (v Viewport) IsPure() bool {
	return v.HasContent() && v.ContentOffset == geom.Offset{} && v.Content.Size() == v.Rect.Size()
}

// Resolve evaluates the region against source dimensions.
// Returns ErrZeroRegionDimension when the viewport has non-positive extent.
func (r Region) Resolve(sourceW, sourceH int) (Viewport, error) {
	l := r.Left.Resolve(sourceW)
	t := r.Top.Resolve(sourceH)
	rt := r.Right.Resolve(sourceW)
	b := r.Bottom.Resolve(sourceH)

	if rt <= l || b <= t {
		return Viewport{}, ErrZeroRegionDimension
	}

	v := Viewport{
		Rect:  geom.Rc(l, t, rt-l, b-t),
		Color: r.Color,
	}

	cl := max(l, 0)
	ct := max(t, 0)
	cr := min(rt, sourceW)
	cb := min(b, sourceH)
	if cr > cl && cb > ct {
		v.Content = geom.Rc(cl, ct, cr-cl, cb-ct)
		v.ContentOffset = geom.Off(cl-l, ct-t)
	}
	return v, nil
}
