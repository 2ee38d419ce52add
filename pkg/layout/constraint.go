// Package layout computes image layout geometry: constraint solving, region
// viewports, and output limits. Everything here is pure integer/float
// arithmetic over source and target dimensions — no pixels are touched.
//
// The central operation is [Constraint.Compute], which fits a source image
// into target dimensions under one of the eight [ConstraintMode] variants and
// returns a [Layout]: the source crop to read, the dimensions to resize to,
// and the canvas plus placement that realize any padding.
package layout

import (
	"math"

	"github.com/matzehuels/picplan/pkg/geom"
)

// ConstraintMode selects how a source image is fitted into target dimensions.
type ConstraintMode uint8

const (
	// Distort scales to the exact target dimensions, ignoring aspect ratio.
	Distort ConstraintMode = iota
	// Fit scales to fit within the target, preserving aspect ratio.
	// Upscales or downscales as needed; one axis may come up short.
	Fit
	// Within is Fit without upscaling: smaller sources keep their size.
	Within
	// FitCrop scales to fill the target and crops the overflow.
	FitCrop
	// WithinCrop is FitCrop without upscaling.
	WithinCrop
	// FitPad scales to fit within the target and pads to its exact size.
	FitPad
	// WithinPad is FitPad without upscaling: smaller sources are untouched.
	WithinPad
	// AspectCrop crops to the target aspect ratio without any scaling.
	AspectCrop
)

// String returns the mode name used in queries and logs.
func (m ConstraintMode) String() string {
	switch m {
	case Distort:
		return "distort"
	case Fit:
		return "fit"
	case Within:
		return "within"
	case FitCrop:
		return "fit-crop"
	case WithinCrop:
		return "within-crop"
	case FitPad:
		return "fit-pad"
	case WithinPad:
		return "within-pad"
	case AspectCrop:
		return "aspect-crop"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (m ConstraintMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Constraint describes how to fit a source into target dimensions, with
// optional explicit cropping, crop/pad anchoring, and canvas color.
//
// Construct with [NewConstraint], [WidthOnly], or [HeightOnly] and chain the
// setters:
//
//	l, err := NewConstraint(FitPad, 400, 300).
//		WithGravity(Center()).
//		WithCanvasColor(White()).
//		Compute(1000, 500)
type Constraint struct {
	Mode ConstraintMode
	// Width and Height are the target dimensions. Negative means absent
	// (derived from the other axis and the source aspect ratio); zero is an
	// invalid target and yields ErrZeroTargetDimension.
	Width       int
	Height      int
	Gravity     Gravity
	CanvasColor CanvasColor
	SourceCrop  *SourceCrop
}

// NewConstraint returns a constraint with both target dimensions.
func NewConstraint(mode ConstraintMode, width, height int) Constraint {
	return Constraint{Mode: mode, Width: width, Height: height}
}

// WidthOnly constrains only the width; height follows the source aspect ratio.
func WidthOnly(mode ConstraintMode, width int) Constraint {
	return Constraint{Mode: mode, Width: width, Height: -1}
}

// HeightOnly constrains only the height; width follows the source aspect ratio.
func HeightOnly(mode ConstraintMode, height int) Constraint {
	return Constraint{Mode: mode, Height: height, Width: -1}
}

// WithGravity sets the crop/pad anchor.
func (c Constraint) WithGravity(g Gravity) Constraint {
	c.Gravity = g
	return c
}

// WithCanvasColor sets the canvas background for pad modes.
func (c Constraint) WithCanvasColor(col CanvasColor) Constraint {
	c.CanvasColor = col
	return c
}

// WithSourceCrop sets an explicit crop applied before the constraint mode.
func (c Constraint) WithSourceCrop(sc SourceCrop) Constraint {
	c.SourceCrop = &sc
	return c
}

func (c Constraint) hasWidth() bool  { return c.Width >= 0 }
func (c Constraint) hasHeight() bool { return c.Height >= 0 }

// Layout is the computed result of applying a constraint: which region of the
// source to read, the dimensions to resize it to, and where it sits on the
// final canvas.
type Layout struct {
	// Source is the original source dimensions.
	Source geom.Size `json:"source"`
	// SourceCrop is the region of the source to use; nil means the full
	// source.
	SourceCrop *geom.Rect `json:"source_crop,omitempty"`
	// ResizeTo is the dimensions the cropped source is resampled to.
	ResizeTo geom.Size `json:"resize_to"`
	// Canvas is the final output dimensions (component-wise ≥ ResizeTo).
	Canvas geom.Size `json:"canvas"`
	// Placement is the top-left offset of the resized image on the canvas.
	// Negative components mean the image is clipped at that canvas edge.
	Placement geom.Offset `json:"placement"`
	// CanvasColor fills canvas areas not covered by the image.
	CanvasColor CanvasColor `json:"canvas_color"`
}

// EffectiveSource returns the dimensions after the source crop.
func (l Layout) EffectiveSource() geom.Size {
	if l.SourceCrop != nil {
		return l.SourceCrop.Size()
	}
	return l.Source
}

// NeedsResize reports whether resampling changes dimensions.
func (l Layout) NeedsResize() bool { return l.ResizeTo != l.EffectiveSource() }

// NeedsPadding reports whether the canvas exceeds the resized image.
func (l Layout) NeedsPadding() bool { return l.Canvas != l.ResizeTo }

// NeedsCrop reports whether a source crop is applied.
func (l Layout) NeedsCrop() bool { return l.SourceCrop != nil }

// IsBlank reports whether the layout carries no source content at all
// (a pure canvas produced by a region with no source overlap).
func (l Layout) IsBlank() bool { return l.ResizeTo.IsZero() }

// normalize clears a source crop that covers the full source.
func (l Layout) normalize() Layout {
	if l.SourceCrop != nil && l.SourceCrop.IsFull(l.Source.W, l.Source.H) {
		l.SourceCrop = nil
	}
	return l
}

// Compute applies the constraint to a source of the given dimensions.
func (c Constraint) Compute(sourceW, sourceH int) (Layout, error) {
	if sourceW <= 0 || sourceH <= 0 {
		return Layout{}, ErrZeroSourceDimension
	}
	sourceW = min(sourceW, geom.MaxDimension)
	sourceH = min(sourceH, geom.MaxDimension)

	// Explicit source crop shrinks the effective source.
	var userCrop *geom.Rect
	sw, sh := sourceW, sourceH
	if c.SourceCrop != nil {
		r := c.SourceCrop.Resolve(sourceW, sourceH)
		userCrop = &r
		sw, sh = r.W, r.H
	}

	tw, th, err := c.resolveTarget(sw, sh)
	if err != nil {
		return Layout{}, err
	}

	base := Layout{
		Source:      geom.Sz(sourceW, sourceH),
		SourceCrop:  userCrop,
		CanvasColor: c.CanvasColor,
	}

	// Single-axis shortcut: the derived dimension already preserves the
	// aspect ratio, so every mode degenerates to a plain resize (re-running
	// the full solver would cascade rounding errors through the wrong axis).
	if !c.hasWidth() || !c.hasHeight() {
		noUpscale := c.Mode == Within || c.Mode == WithinCrop || c.Mode == WithinPad
		rw, rh := tw, th
		if c.Mode == AspectCrop || (noUpscale && sw <= tw && sh <= th) {
			rw, rh = sw, sh
		}
		base.ResizeTo = geom.Sz(rw, rh)
		base.Canvas = geom.Sz(rw, rh)
		if c.Mode == FitPad || c.Mode == WithinPad {
			base.Canvas = geom.Sz(tw, th)
			base.Placement = c.gravityOffset(tw, th, rw, rh)
		}
		return base.normalize(), nil
	}

	switch c.Mode {
	case Distort:
		base.ResizeTo = geom.Sz(tw, th)
		base.Canvas = base.ResizeTo

	case Fit:
		rw, rh := fitInside(sw, sh, tw, th)
		base.ResizeTo = geom.Sz(rw, rh)
		base.Canvas = base.ResizeTo

	case Within:
		rw, rh := sw, sh
		if sw > tw || sh > th {
			rw, rh = fitInside(sw, sh, tw, th)
		}
		base.ResizeTo = geom.Sz(rw, rh)
		base.Canvas = base.ResizeTo

	case FitCrop:
		crop := combineCrops(userCrop, cropToAspect(sw, sh, tw, th, c.Gravity))
		base.SourceCrop = &crop
		base.ResizeTo = geom.Sz(tw, th)
		base.Canvas = base.ResizeTo

	case WithinCrop:
		switch {
		case sw <= tw && sh <= th:
			// Source already fits — identity.
			base.ResizeTo = geom.Sz(sw, sh)
			base.Canvas = base.ResizeTo
		case sw >= tw && sh >= th:
			crop := combineCrops(userCrop, cropToAspect(sw, sh, tw, th, c.Gravity))
			base.SourceCrop = &crop
			base.ResizeTo = geom.Sz(tw, th)
			base.Canvas = base.ResizeTo
		default:
			// One axis larger, one smaller: crop to the intersection,
			// no scaling.
			rw := min(sw, tw)
			rh := min(sh, th)
			if rw < sw || rh < sh {
				x, y := 0, 0
				if rw < sw {
					x = c.Gravity.offset1D(sw-rw, true)
				}
				if rh < sh {
					y = c.Gravity.offset1D(sh-rh, false)
				}
				crop := combineCrops(userCrop, geom.Rc(x, y, rw, rh))
				base.SourceCrop = &crop
			}
			base.ResizeTo = geom.Sz(rw, rh)
			base.Canvas = base.ResizeTo
		}

	case FitPad:
		rw, rh := fitInside(sw, sh, tw, th)
		base.ResizeTo = geom.Sz(rw, rh)
		base.Canvas = geom.Sz(tw, th)
		base.Placement = c.gravityOffset(tw, th, rw, rh)

	case WithinPad:
		if sw <= tw && sh <= th {
			// Source fits on both axes — identity, no padding.
			base.ResizeTo = geom.Sz(sw, sh)
			base.Canvas = base.ResizeTo
		} else {
			rw, rh := fitInside(sw, sh, tw, th)
			base.ResizeTo = geom.Sz(rw, rh)
			base.Canvas = geom.Sz(tw, th)
			base.Placement = c.gravityOffset(tw, th, rw, rh)
		}

	case AspectCrop:
		crop := combineCrops(userCrop, cropToAspect(sw, sh, tw, th, c.Gravity))
		base.SourceCrop = &crop
		base.ResizeTo = crop.Size()
		base.Canvas = base.ResizeTo
	}

	return base.normalize(), nil
}

// resolveTarget fills in a missing target axis from the source aspect ratio.
func (c Constraint) resolveTarget(sw, sh int) (int, int, error) {
	hasW, hasH := c.hasWidth(), c.hasHeight()
	switch {
	case (hasW && c.Width == 0) || (hasH && c.Height == 0),
		!hasW && !hasH:
		return 0, 0, ErrZeroTargetDimension
	case hasW && hasH:
		return c.Width, c.Height, nil
	case hasW:
		h := max(geom.RoundHalfAway(float64(sh)*float64(c.Width)/float64(sw)), 1)
		return c.Width, h, nil
	default:
		w := max(geom.RoundHalfAway(float64(sw)*float64(c.Height)/float64(sh)), 1)
		return w, c.Height, nil
	}
}

// gravityOffset places an iw×ih image on a cw×ch canvas.
func (c Constraint) gravityOffset(cw, ch, iw, ih int) geom.Offset {
	return geom.Off(
		c.Gravity.offset1D(max(cw-iw, 0), true),
		c.Gravity.offset1D(max(ch-ih, 0), false),
	)
}

// fitInside computes the largest dimensions with the source aspect ratio that
// fit inside the target box. One axis matches the target exactly.
func fitInside(sw, sh, tw, th int) (int, int) {
	ratioW := float64(tw) / float64(sw)
	ratioH := float64(th) / float64(sh)
	if ratioW <= ratioH {
		return tw, proportional(sw, sh, tw, true, tw, th)
	}
	return proportional(sw, sh, th, false, tw, th), th
}

// cropToAspect computes the largest sub-rect of the source matching the
// target aspect ratio, positioned by gravity.
func cropToAspect(sw, sh, tw, th int, g Gravity) geom.Rect {
	// Cross-multiply to detect exact aspect matches without float compare.
	if int64(sw)*int64(th) == int64(sh)*int64(tw) {
		return geom.Rc(0, 0, sw, sh)
	}

	if float64(sw)/float64(sh) > float64(tw)/float64(th) {
		// Source wider: crop width, keep full height.
		newW := proportional(tw, th, sh, false, sw, sh)
		if newW >= sw {
			return geom.Rc(0, 0, sw, sh)
		}
		return geom.Rc(g.offset1D(sw-newW, true), 0, newW, sh)
	}
	// Source taller: crop height, keep full width.
	newH := proportional(tw, th, sw, true, sw, sh)
	if newH >= sh {
		return geom.Rc(0, 0, sw, sh)
	}
	return geom.Rc(0, g.offset1D(sh-newH, false), sw, newH)
}

// combineCrops composes a constraint-computed crop (in post-user-crop
// coordinates) with the explicit user crop.
func combineCrops(userCrop *geom.Rect, constraintCrop geom.Rect) geom.Rect {
	if userCrop == nil {
		return constraintCrop
	}
	return geom.Rect{
		X: userCrop.X + constraintCrop.X,
		Y: userCrop.Y + constraintCrop.Y,
		W: min(constraintCrop.W, max(userCrop.W-constraintCrop.X, 0)),
		H: min(constraintCrop.H, max(userCrop.H-constraintCrop.Y, 0)),
	}
}

// proportional computes the free dimension with snap-aware rounding.
//
// Given a ratio (ratioW × ratioH), the fixed dimension (basis, with
// basisIsWidth naming its axis), and the snap candidates (targetW × targetH),
// it computes the proportional value and snaps it to either the source or
// target dimension when doing so stays within the rounding loss. This
// prevents cascades like 1200×400 → 100×33 yielding 99 instead of 100.
func proportional(ratioW, ratioH, basis int, basisIsWidth bool, targetW, targetH int) int {
	ratio := float64(ratioW) / float64(ratioH)

	var snapAmount float64
	if basisIsWidth {
		snapAmount = roundingLossHeight(ratioW, ratioH, targetH)
	} else {
		snapAmount = roundingLossWidth(ratioW, ratioH, targetW)
	}

	// snapA: the source dimension on the free axis; snapB: the target's.
	snapA, snapB := ratioH, targetH
	if !basisIsWidth {
		snapA, snapB = ratioW, targetW
	}

	value := ratio * float64(basis)
	if basisIsWidth {
		value = float64(basis) / ratio
	}

	deltaA := math.Abs(value - float64(snapA))
	deltaB := math.Abs(value - float64(snapB))

	var v int
	switch {
	case deltaA <= snapAmount && deltaA <= deltaB:
		v = snapA
	case deltaB <= snapAmount:
		v = snapB
	default:
		v = geom.RoundHalfAway(value)
	}
	return max(v, 1)
}

// roundingLossWidth measures how far the width drifts when the free height is
// rounded, using the target width as basis.
func roundingLossWidth(ratioW, ratioH, targetWidth int) float64 {
	ratio := float64(ratioW) / float64(ratioH)
	scale := float64(targetWidth) / float64(ratioW)
	roundedH := math.Round(float64(ratioH) * scale)
	return math.Abs(float64(targetWidth) - roundedH*ratio)
}

// roundingLossHeight measures how far the height drifts when the free width
// is rounded, using the target height as basis.
func roundingLossHeight(ratioW, ratioH, targetHeight int) float64 {
	ratio := float64(ratioW) / float64(ratioH)
	scale := float64(targetHeight) / float64(ratioH)
	roundedW := math.Round(float64(ratioW) * scale)
	return math.Abs(float64(targetHeight) - roundedW/ratio)
}
