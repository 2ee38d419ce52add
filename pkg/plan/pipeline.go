package plan

import (
	"github.com/matzehuels/picplan/pkg/geom"
	"github.com/matzehuels/picplan/pkg/layout"
	"github.com/matzehuels/picplan/pkg/orient"
)

// Pipeline is the fixed-order layout builder. Each command category occupies
// one slot and the last setter wins, except orientation, which composes.
// Evaluation order is always: orient → region/crop → constrain → pad →
// output limits, regardless of call order.
//
// The builder is a plain value: chaining copies it, and Plan allocates
// nothing on the happy path beyond the returned structures.
//
//	ideal, req, err := plan.New(4000, 3000).
//		AutoOrient(6).
//		FitCrop(500, 500).
//		Plan()
type Pipeline struct {
	sourceW, sourceH int

	orientation orient.Orientation

	// Region/crop share one slot: setting either replaces the other.
	hasRegion bool
	region    layout.Region
	hasCrop   bool
	crop      layout.SourceCrop

	hasConstraint bool
	constraint    layout.Constraint

	padding Padding

	limits layout.OutputLimits
}

// New returns a pipeline for a source of the given dimensions.
func New(sourceW, sourceH int) Pipeline {
	return Pipeline{sourceW: sourceW, sourceH: sourceH}
}

// AutoOrient composes an EXIF orientation correction (1–8) into the source
// transform. Out-of-range values are ignored.
func (p Pipeline) AutoOrient(exif int) Pipeline {
	if o, ok := orient.FromEXIF(exif); ok {
		p.orientation = p.orientation.Compose(o)
	}
	return p
}

// Orient composes an orientation directly.
func (p Pipeline) Orient(o orient.Orientation) Pipeline {
	p.orientation = p.orientation.Compose(o)
	return p
}

// Rotate composes a manual rotation.
func (p Pipeline) Rotate(r Rotation) Pipeline { return p.Orient(r.Orientation()) }

// Flip composes a manual mirror.
func (p Pipeline) Flip(axis FlipAxis) Pipeline { return p.Orient(axis.Orientation()) }

// Crop sets the source-selection slot to a crop, replacing any region.
func (p Pipeline) Crop(c layout.SourceCrop) Pipeline {
	p.hasCrop, p.crop = true, c
	p.hasRegion = false
	return p
}

// CropPixels sets a pixel crop in post-orientation coordinates.
func (p Pipeline) CropPixels(x, y, w, h int) Pipeline {
	return p.Crop(layout.CropPixels(x, y, w, h))
}

// CropPercent sets a fractional crop.
func (p Pipeline) CropPercent(x, y, w, h float64) Pipeline {
	return p.Crop(layout.CropPercent(x, y, w, h))
}

// Region sets the source-selection slot to a viewport, replacing any crop.
func (p Pipeline) Region(r layout.Region) Pipeline {
	p.hasRegion, p.region = true, r
	p.hasCrop = false
	return p
}

// Constrain sets the constraint slot.
func (p Pipeline) Constrain(c layout.Constraint) Pipeline {
	p.hasConstraint, p.constraint = true, c
	return p
}

// Fit constrains to fit within w×h, scaling in both directions.
func (p Pipeline) Fit(w, h int) Pipeline { return p.Constrain(layout.NewConstraint(layout.Fit, w, h)) }

// FitCrop constrains to fill w×h, cropping overflow.
func (p Pipeline) FitCrop(w, h int) Pipeline {
	return p.Constrain(layout.NewConstraint(layout.FitCrop, w, h))
}

// FitPad constrains to fit within w×h and pads to exactly w×h.
func (p Pipeline) FitPad(w, h int) Pipeline {
	return p.Constrain(layout.NewConstraint(layout.FitPad, w, h))
}

// Within constrains to fit within w×h without upscaling.
func (p Pipeline) Within(w, h int) Pipeline {
	return p.Constrain(layout.NewConstraint(layout.Within, w, h))
}

// Distort constrains to exactly w×h, ignoring aspect ratio.
func (p Pipeline) Distort(w, h int) Pipeline {
	return p.Constrain(layout.NewConstraint(layout.Distort, w, h))
}

// AspectCrop crops to the w:h aspect ratio without scaling.
func (p Pipeline) AspectCrop(w, h int) Pipeline {
	return p.Constrain(layout.NewConstraint(layout.AspectCrop, w, h))
}

// Pad sets per-side canvas padding. Successive calls accumulate.
func (p Pipeline) Pad(top, right, bottom, left int, color layout.CanvasColor) Pipeline {
	p.padding = p.padding.add(Padding{Top: top, Right: right, Bottom: bottom, Left: left, Color: color})
	return p
}

// PadUniform pads every side by n pixels.
func (p Pipeline) PadUniform(n int, color layout.CanvasColor) Pipeline {
	p.padding = p.padding.add(Uniform(n, color))
	return p
}

// Limits sets the output limits slot.
func (p Pipeline) Limits(l layout.OutputLimits) Pipeline {
	p.limits = l
	return p
}

// MaxOutput caps the canvas at w×h.
func (p Pipeline) MaxOutput(w, h int) Pipeline {
	s := geom.Sz(w, h)
	p.limits.Max = &s
	return p
}

// MinOutput floors the canvas at w×h.
func (p Pipeline) MinOutput(w, h int) Pipeline {
	s := geom.Sz(w, h)
	p.limits.Min = &s
	return p
}

// AlignOutput rounds the canvas to alignment multiples.
func (p Pipeline) AlignOutput(a layout.Align) Pipeline {
	p.limits.Align = &a
	return p
}

// Plan evaluates the pipeline and returns the ideal layout plus the decoder
// hints derived from it.
func (p Pipeline) Plan() (IdealLayout, DecoderRequest, error) {
	src := geom.Sz(p.sourceW, p.sourceH)
	display := p.orientation.TransformDimensions(src)

	var vs viewportState
	var err error
	switch {
	case p.hasRegion:
		vs, err = vs.compose(p.region, display.W, display.H)
		if err != nil {
			return IdealLayout{}, DecoderRequest{}, err
		}
	case p.hasCrop:
		vs = vs.composeCrop(p.crop, display.W, display.H)
	}

	var constraint *layout.Constraint
	if p.hasConstraint {
		constraint = &p.constraint
	}

	return finishPlan(src, p.orientation, vs, constraint, p.padding, p.limits)
}

// finishPlan shares the tail of both evaluators: compose, pad, limit, and
// derive the pre-orientation crop and decoder request.
func finishPlan(
	src geom.Size,
	o orient.Orientation,
	vs viewportState,
	constraint *layout.Constraint,
	padding Padding,
	limits layout.OutputLimits,
) (IdealLayout, DecoderRequest, error) {
	l, err := composeLayout(src, o, vs, constraint)
	if err != nil {
		return IdealLayout{}, DecoderRequest{}, err
	}

	l = applyPadding(l, padding)

	var contentSize *geom.Size
	if !limits.IsZero() {
		l, contentSize = limits.Apply(l)
	}

	ideal := IdealLayout{
		Orientation: o,
		Layout:      l,
		ContentSize: contentSize,
	}
	if !padding.IsZero() {
		pad := padding
		ideal.Padding = &pad
	}
	if l.SourceCrop != nil {
		crop := o.TransformRectToSource(*l.SourceCrop, src.W, src.H)
		ideal.SourceCrop = &crop
	}

	return ideal, ideal.Request(), nil
}
