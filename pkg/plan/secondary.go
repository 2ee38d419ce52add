package plan

import (
	"math"

	"github.com/matzehuels/picplan/pkg/geom"
	"github.com/matzehuels/picplan/pkg/layout"
)

// DeriveSecondary projects the ideal layout of a primary image onto a
// secondary plane of different resolution (a gain map, depth map, or alpha
// plane that is spatially co-located with the primary).
//
// The source crop is scaled into secondary coordinates and rounded outward,
// guaranteeing the secondary selection covers everything the primary
// selected. The target size is secondaryTarget when non-nil, otherwise the
// primary's output scaled by the resolution ratio, preserving the plane's
// native resolution relationship. Orientation is inherited unchanged, so
// after both negotiations the remaining orientation matches across planes.
func (i IdealLayout) DeriveSecondary(
	primarySrc, secondarySrc geom.Size,
	secondaryTarget *geom.Size,
) (IdealLayout, DecoderRequest, error) {
	if primarySrc.IsZero() || secondarySrc.IsZero() {
		return IdealLayout{}, DecoderRequest{}, layout.ErrZeroSourceDimension
	}

	rx := float64(secondarySrc.W) / float64(primarySrc.W)
	ry := float64(secondarySrc.H) / float64(primarySrc.H)

	// Round-outward crop scaling in pre-orientation source space.
	var secCrop *geom.Rect
	if i.SourceCrop != nil {
		c := *i.SourceCrop
		x0 := int(math.Floor(float64(c.X) * rx))
		y0 := int(math.Floor(float64(c.Y) * ry))
		x1 := int(math.Ceil(float64(c.X+c.W) * rx))
		y1 := int(math.Ceil(float64(c.Y+c.H) * ry))
		r := geom.Rc(x0, y0, max(x1-x0, 1), max(y1-y0, 1)).
			ClampTo(secondarySrc.W, secondarySrc.H)
		if !r.IsFull(secondarySrc.W, secondarySrc.H) {
			secCrop = &r
		}
	}

	// Target size: explicit, or the primary output scaled by the plane
	// ratio. The ratio is per source axis, so it swaps with the display
	// axes under an axis-swapping orientation.
	var target geom.Size
	if secondaryTarget != nil {
		target = *secondaryTarget
	} else {
		dx, dy := rx, ry
		if i.Orientation.SwapsAxes() {
			dx, dy = ry, rx
		}
		target = geom.Sz(
			geom.ScaleDim(i.Layout.ResizeTo.W, dx),
			geom.ScaleDim(i.Layout.ResizeTo.H, dy),
		)
	}

	display := i.Orientation.TransformDimensions(secondarySrc)
	out := IdealLayout{
		Orientation: i.Orientation,
		Layout: layout.Layout{
			Source:      display,
			ResizeTo:    target,
			Canvas:      target,
			CanvasColor: i.Layout.CanvasColor,
		},
		SourceCrop: secCrop,
	}
	if secCrop != nil {
		dc := forwardRect(i.Orientation, *secCrop, secondarySrc.W, secondarySrc.H)
		out.Layout.SourceCrop = &dc
	}

	return out, out.Request(), nil
}
