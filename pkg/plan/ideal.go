package plan

import (
	"math"

	"github.com/matzehuels/picplan/pkg/geom"
	"github.com/matzehuels/picplan/pkg/layout"
	"github.com/matzehuels/picplan/pkg/orient"
)

// IdealLayout is the result of the first planning phase: the layout computed
// as if the decoder produced a full, untouched decode.
type IdealLayout struct {
	// Orientation is the net D4 element that still has to be realized by the
	// decoder or the pixel engine.
	Orientation orient.Orientation `json:"orientation"`
	// Layout is the computed geometry in post-orientation display space.
	Layout layout.Layout `json:"layout"`
	// SourceCrop is the crop in pre-orientation source coordinates; nil when
	// the full source is used.
	SourceCrop *geom.Rect `json:"source_crop,omitempty"`
	// Padding is the additive canvas padding applied after the constraint.
	Padding *Padding `json:"padding,omitempty"`
	// ContentSize is set when an extend alignment grew the canvas; it is the
	// real content extent inside the aligned canvas.
	ContentSize *geom.Size `json:"content_size,omitempty"`
}

// SourceSize returns the pre-orientation source dimensions.
func (i IdealLayout) SourceSize() geom.Size {
	return i.Orientation.TransformDimensions(i.Layout.Source)
}

// DecoderRequest is the advisory hint set handed to the decoder. The decoder
// may satisfy any subset of it.
type DecoderRequest struct {
	// Crop is the preferred source crop in pre-orientation coordinates.
	Crop *geom.Rect `json:"crop,omitempty"`
	// TargetSize is the prescale hint in pre-orientation axes (e.g. JPEG
	// 1/2, 1/4, 1/8 scaled decode).
	TargetSize geom.Size `json:"target_size"`
	// Orientation is the net orientation the decoder is permitted to apply.
	Orientation orient.Orientation `json:"orientation"`
}

// DecoderOffer reports what the decoder actually did.
type DecoderOffer struct {
	// Dimensions is the decoder's actual output size.
	Dimensions geom.Size `json:"dimensions"`
	// CropApplied is the crop the decoder performed, in pre-orientation
	// source coordinates; nil if it decoded the full frame.
	CropApplied *geom.Rect `json:"crop_applied,omitempty"`
	// OrientationApplied is the orientation the decoder already realized.
	OrientationApplied orient.Orientation `json:"orientation_applied"`
}

// FullDecode is the default offer: the decoder decoded the whole frame at
// full size and applied nothing.
func FullDecode(w, h int) DecoderOffer {
	return DecoderOffer{Dimensions: geom.Sz(w, h)}
}

// LayoutPlan is the reconciled, fully concrete work order for the pixel
// engine: everything is consumable without further layout logic.
type LayoutPlan struct {
	// DecoderRequest echoes what was asked of the decoder.
	DecoderRequest DecoderRequest `json:"decoder_request"`
	// Trim is a residual crop in decoder-output coordinates; nil when the
	// decoder output needs no trimming.
	Trim *geom.Rect `json:"trim,omitempty"`
	// ResizeTo is the resample target.
	ResizeTo geom.Size `json:"resize_to"`
	// RemainingOrientation is what is left to apply after the decoder's
	// contribution.
	RemainingOrientation orient.Orientation `json:"remaining_orientation"`
	// Canvas and Placement position the result on the output canvas.
	Canvas      geom.Size    `json:"canvas"`
	Placement   geom.Offset  `json:"placement"`
	CanvasColor layout.CanvasColor `json:"canvas_color"`
	// ResizeIsIdentity is true when the (trimmed, re-oriented) decoder
	// output already has the target dimensions, enabling lossless paths.
	ResizeIsIdentity bool `json:"resize_is_identity"`
	// ContentSize carries the extend-alignment content extent, if any.
	ContentSize *geom.Size `json:"content_size,omitempty"`
}

// Request derives the decoder hints for the ideal layout.
func (i IdealLayout) Request() DecoderRequest {
	req := DecoderRequest{
		Crop:        i.SourceCrop,
		Orientation: i.Orientation,
	}
	// The prescale hint is the content resize target expressed in
	// pre-orientation axes.
	req.TargetSize = i.Orientation.TransformDimensions(i.Layout.ResizeTo)
	if i.Layout.IsBlank() {
		req.TargetSize = i.SourceSize()
	}
	return req
}

// forwardRect maps a rect from pre-orientation source coordinates into the
// display space of o, for a source of the given dimensions. It is the exact
// inverse of orient.TransformRectToSource.
func forwardRect(o orient.Orientation, r geom.Rect, srcW, srcH int) geom.Rect {
	d := o.TransformDimensions(geom.Sz(srcW, srcH))
	return o.Inverse().TransformRectToSource(r, d.W, d.H)
}

// rectsEqual compares two optional rects.
func rectsEqual(a, b *geom.Rect) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Finalize reconciles the ideal layout against what the decoder actually
// produced, yielding the residual work for the pixel engine.
//
// The plan is always well defined: with a full decode it contains the entire
// trim + resize + orient + place work.
func (i IdealLayout) Finalize(req DecoderRequest, offer DecoderOffer) LayoutPlan {
	p := LayoutPlan{
		DecoderRequest:       req,
		ResizeTo:             i.Layout.ResizeTo,
		RemainingOrientation: i.Orientation.Compose(offer.OrientationApplied.Inverse()),
		Canvas:               i.Layout.Canvas,
		Placement:            i.Layout.Placement,
		CanvasColor:          i.Layout.CanvasColor,
		ContentSize:          i.ContentSize,
	}

	if i.Layout.IsBlank() {
		// No source content reaches the output; nothing to trim or resize.
		p.RemainingOrientation = orient.Identity
		p.ResizeIsIdentity = true
		return p
	}

	src := i.SourceSize()

	// The region of the source the decoder actually decoded.
	decoded := geom.Rc(0, 0, src.W, src.H)
	if offer.CropApplied != nil {
		decoded = *offer.CropApplied
	}

	// Prescale factors between the decoded region (after the decoder's own
	// orientation) and its reported output dimensions.
	decodedOriented := offer.OrientationApplied.TransformDimensions(decoded.Size())
	fx := float64(offer.Dimensions.W) / float64(decodedOriented.W)
	fy := float64(offer.Dimensions.H) / float64(decodedOriented.H)

	// Residual trim: the ideal source crop re-expressed in decoder-output
	// coordinates, unless the decoder already applied exactly that crop.
	if i.SourceCrop != nil && !rectsEqual(i.SourceCrop, offer.CropApplied) {
		if rel, ok := i.SourceCrop.Intersect(decoded); ok {
			rel = rel.Translate(-decoded.X, -decoded.Y)
			rel = forwardRect(offer.OrientationApplied, rel, decoded.W, decoded.H)
			trim := scaleRectOutward(rel, fx, fy, offer.Dimensions)
			if !trim.IsFull(offer.Dimensions.W, offer.Dimensions.H) {
				p.Trim = &trim
			}
		}
	}

	// Identity detection: the trimmed decoder output, brought into the final
	// orientation, already matches the resize target.
	afterTrim := offer.Dimensions
	if p.Trim != nil {
		afterTrim = p.Trim.Size()
	}
	p.ResizeIsIdentity = p.RemainingOrientation.TransformDimensions(afterTrim) == p.ResizeTo

	return p
}

// scaleRectOutward scales a rect by per-axis factors, rounding the origin
// down and the extent up so the scaled rect fully covers the original, then
// clamps to bounds.
func scaleRectOutward(r geom.Rect, fx, fy float64, bounds geom.Size) geom.Rect {
	x0 := int(math.Floor(float64(r.X) * fx))
	y0 := int(math.Floor(float64(r.Y) * fy))
	x1 := int(math.Ceil(float64(r.X+r.W) * fx))
	y1 := int(math.Ceil(float64(r.Y+r.H) * fy))
	return geom.Rc(x0, y0, max(x1-x0, 1), max(y1-y0, 1)).ClampTo(bounds.W, bounds.H)
}
