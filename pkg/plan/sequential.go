package plan

import (
	"github.com/matzehuels/picplan/pkg/geom"
	"github.com/matzehuels/picplan/pkg/layout"
	"github.com/matzehuels/picplan/pkg/orient"
)

// ComputeLayoutSequential evaluates commands in order and fuses them into a
// single-pass layout: one crop, one resize, one canvas.
//
// Fusion rules (these are what make single-pass execution possible, and they
// intentionally diverge from step-by-step pixel execution in a few places):
//
//   - Orientation commands fuse algebraically into one source transform no
//     matter where they appear. An axis-swapping orientation arriving after
//     a constraint swaps the constraint's target dimensions to compensate.
//   - Crop and region commands before the constraint compose into a single
//     viewport; each resolves against the previous viewport's dimensions.
//   - The last constraint wins. Its arrival discards any earlier constraint
//     together with all canvas adjustments queued after it.
//   - Pad commands before the constraint join the viewport too (the padding
//     scales with the content, as if the source had been padded first).
//   - Crop, region, and pad commands after the constraint adjust the output
//     canvas (crop shrinks it, pad expands it); they never touch the source.
//
// Unlike Pipeline, the sequential evaluator may allocate for its
// arbitrary-length command list.
func ComputeLayoutSequential(
	commands []Command,
	sourceW, sourceH int,
	limits layout.OutputLimits,
) (IdealLayout, DecoderRequest, error) {
	src := geom.Sz(sourceW, sourceH)
	if src.IsZero() {
		return IdealLayout{}, DecoderRequest{}, layout.ErrZeroSourceDimension
	}

	var (
		o             orient.Orientation
		vs            viewportState
		hasConstraint bool
		constraint    layout.Constraint
		postOps       []Command
	)

	for _, cmd := range commands {
		if co, ok := cmd.orientation(); ok {
			o = o.Compose(co)
			if hasConstraint && co.SwapsAxes() {
				constraint.Width, constraint.Height = constraint.Height, constraint.Width
			}
			continue
		}

		switch cmd.kind {
		case cmdConstrain:
			// Last constraint wins; queued canvas adjustments die with the
			// constraint they followed.
			hasConstraint = true
			constraint = cmd.constraint
			postOps = postOps[:0]

		case cmdPad:
			if hasConstraint {
				postOps = append(postOps, cmd)
				break
			}
			// Pre-constraint padding is a viewport expansion: it scales
			// with the content under a later constraint.
			display := o.TransformDimensions(src)
			reg := layout.Region{
				Left:   layout.Px(-cmd.pad.Left),
				Top:    layout.Px(-cmd.pad.Top),
				Right:  layout.PctPx(1, cmd.pad.Right),
				Bottom: layout.PctPx(1, cmd.pad.Bottom),
				Color:  cmd.pad.Color,
			}
			var err error
			vs, err = vs.compose(reg, display.W, display.H)
			if err != nil {
				return IdealLayout{}, DecoderRequest{}, err
			}

		case cmdCrop:
			if hasConstraint {
				postOps = append(postOps, cmd)
				break
			}
			display := o.TransformDimensions(src)
			vs = vs.composeCrop(cmd.crop, display.W, display.H)

		case cmdRegion:
			if hasConstraint {
				postOps = append(postOps, cmd)
				break
			}
			display := o.TransformDimensions(src)
			var err error
			vs, err = vs.compose(cmd.region, display.W, display.H)
			if err != nil {
				return IdealLayout{}, DecoderRequest{}, err
			}
		}
	}

	var cp *layout.Constraint
	if hasConstraint {
		cp = &constraint
	}

	l, err := composeLayout(src, o, vs, cp)
	if err != nil {
		return IdealLayout{}, DecoderRequest{}, err
	}

	// Replay the queued canvas adjustments in order.
	var padding Padding
	for _, op := range postOps {
		switch op.kind {
		case cmdPad:
			l = applyPadding(l, op.pad)
			padding = padding.add(op.pad)
		case cmdCrop:
			l = applyCanvasCrop(l, op.crop)
		case cmdRegion:
			l, err = applyCanvasViewport(l, op.region)
			if err != nil {
				return IdealLayout{}, DecoderRequest{}, err
			}
		}
	}

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
		ideal.Padding = &padding
	}
	if l.SourceCrop != nil {
		crop := o.TransformRectToSource(*l.SourceCrop, src.W, src.H)
		ideal.SourceCrop = &crop
	}

	return ideal, ideal.Request(), nil
}
