package plan

import (
	"github.com/matzehuels/picplan/pkg/geom"
	"github.com/matzehuels/picplan/pkg/layout"
	"github.com/matzehuels/picplan/pkg/orient"
)

// viewportState is the accumulated crop/pad viewport in post-orientation
// display coordinates. The zero value means "full source, no viewport".
type viewportState struct {
	set   bool
	rect  geom.Rect // signed, display coordinates
	color layout.CanvasColor
}

// resolve returns the viewport against display dimensions, defaulting to the
// full display when none was set.
func (v viewportState) resolve(displayW, displayH int) layout.Viewport {
	if !v.set {
		full := geom.Rc(0, 0, displayW, displayH)
		return layout.Viewport{Rect: full, Content: full}
	}
	vp := layout.Viewport{Rect: v.rect, Color: v.color}
	cl := max(v.rect.X, 0)
	ct := max(v.rect.Y, 0)
	cr := min(v.rect.X+v.rect.W, displayW)
	cb := min(v.rect.Y+v.rect.H, displayH)
	if cr > cl && cb > ct {
		vp.Content = geom.Rc(cl, ct, cr-cl, cb-ct)
		vp.ContentOffset = geom.Off(cl-v.rect.X, ct-v.rect.Y)
	}
	return vp
}

// compose merges a region resolved against the current viewport dimensions
// into the accumulated state. Coordinates nest: the new region is expressed
// in the current viewport's space.
func (v viewportState) compose(r layout.Region, displayW, displayH int) (viewportState, error) {
	baseW, baseH := displayW, displayH
	baseX, baseY := 0, 0
	if v.set {
		baseW, baseH = v.rect.W, v.rect.H
		baseX, baseY = v.rect.X, v.rect.Y
	}

	l := r.Left.Resolve(baseW)
	t := r.Top.Resolve(baseH)
	rt := r.Right.Resolve(baseW)
	b := r.Bottom.Resolve(baseH)
	if rt <= l || b <= t {
		return v, layout.ErrZeroRegionDimension
	}

	out := viewportState{
		set:   true,
		rect:  geom.Rc(baseX+l, baseY+t, rt-l, b-t),
		color: r.Color,
	}
	if r.Color.IsTransparent() && v.set {
		out.color = v.color
	}
	return out, nil
}

// composeCrop merges a SourceCrop (resolved against the current viewport
// dimensions) into the state.
func (v viewportState) composeCrop(c layout.SourceCrop, displayW, displayH int) viewportState {
	baseW, baseH := displayW, displayH
	baseX, baseY := 0, 0
	if v.set {
		baseW, baseH = v.rect.W, v.rect.H
		baseX, baseY = v.rect.X, v.rect.Y
	}
	r := c.Resolve(baseW, baseH)
	return viewportState{
		set:   true,
		rect:  r.Translate(baseX, baseY),
		color: v.color,
	}
}

// composeLayout runs the shared core of both evaluators: resolve the viewport
// against the oriented source, apply the constraint to the viewport
// dimensions, and recombine the solver's output with the viewport's
// content/padding split.
//
// The returned layout is in post-orientation display space; its SourceCrop is
// the display-space crop (not yet mapped back to pre-orientation source
// coordinates).
func composeLayout(
	src geom.Size,
	o orient.Orientation,
	vs viewportState,
	constraint *layout.Constraint,
) (layout.Layout, error) {
	if src.IsZero() {
		return layout.Layout{}, layout.ErrZeroSourceDimension
	}
	display := o.TransformDimensions(src)
	vp := vs.resolve(display.W, display.H)
	vw, vh := vp.Rect.W, vp.Rect.H

	// Solve the constraint against the full viewport so padding scales
	// proportionally with content.
	var solved layout.Layout
	if constraint != nil {
		var err error
		solved, err = constraint.Compute(vw, vh)
		if err != nil {
			return layout.Layout{}, err
		}
	} else {
		solved = layout.Layout{
			Source:   geom.Sz(vw, vh),
			ResizeTo: geom.Sz(vw, vh),
			Canvas:   geom.Sz(vw, vh),
		}
	}

	// The viewport region the solver elected to keep, in viewport coords.
	kept := geom.Rc(0, 0, vw, vh)
	if solved.SourceCrop != nil {
		kept = *solved.SourceCrop
	}
	sx := float64(solved.ResizeTo.W) / float64(kept.W)
	sy := float64(solved.ResizeTo.H) / float64(kept.H)

	out := layout.Layout{
		Source:      display,
		Canvas:      solved.Canvas,
		Placement:   solved.Placement,
		CanvasColor: solved.CanvasColor,
	}
	if !vp.IsPure() {
		out.CanvasColor = vp.Color
	}

	if !vp.HasContent() {
		// Pure canvas: no source pixels reach the output.
		return out, nil
	}

	contentInViewport := geom.Rc(
		vp.ContentOffset.X, vp.ContentOffset.Y,
		vp.Content.W, vp.Content.H,
	)
	visible, ok := kept.Intersect(contentInViewport)
	if !ok {
		return out, nil
	}

	// Source crop in display coordinates.
	crop := geom.Rc(
		visible.X-vp.ContentOffset.X+vp.Content.X,
		visible.Y-vp.ContentOffset.Y+vp.Content.Y,
		visible.W, visible.H,
	)
	if !crop.IsFull(display.W, display.H) {
		out.SourceCrop = &crop
	}

	out.ResizeTo = geom.Sz(
		geom.ScaleDim(visible.W, sx),
		geom.ScaleDim(visible.H, sy),
	)
	out.Placement = out.Placement.Add(geom.Off(
		geom.RoundHalfAway(float64(visible.X-kept.X)*sx),
		geom.RoundHalfAway(float64(visible.Y-kept.Y)*sy),
	))
	out.Canvas = out.Canvas.Max(out.ResizeTo)
	return out, nil
}

// applyPadding expands the canvas and shifts the placement inward.
func applyPadding(l layout.Layout, p Padding) layout.Layout {
	if p.IsZero() {
		return l
	}
	l.Canvas.W += p.Left + p.Right
	l.Canvas.H += p.Top + p.Bottom
	l.Placement = l.Placement.Add(geom.Off(p.Left, p.Top))
	if !p.Color.IsTransparent() {
		l.CanvasColor = p.Color
	}
	return l
}

// applyCanvasViewport re-frames the output canvas through a region resolved
// against the current canvas dimensions: edges inside crop the canvas, edges
// outside pad it.
func applyCanvasViewport(l layout.Layout, r layout.Region) (layout.Layout, error) {
	lft := r.Left.Resolve(l.Canvas.W)
	top := r.Top.Resolve(l.Canvas.H)
	rgt := r.Right.Resolve(l.Canvas.W)
	bot := r.Bottom.Resolve(l.Canvas.H)
	if rgt <= lft || bot <= top {
		return l, layout.ErrZeroRegionDimension
	}
	l.Canvas = geom.Sz(rgt-lft, bot-top)
	l.Placement = l.Placement.Add(geom.Off(-lft, -top))
	if !r.Color.IsTransparent() {
		l.CanvasColor = r.Color
	}
	return l, nil
}

// applyCanvasCrop crops the output canvas by a SourceCrop resolved against
// the canvas dimensions.
func applyCanvasCrop(l layout.Layout, c layout.SourceCrop) layout.Layout {
	r := c.Resolve(l.Canvas.W, l.Canvas.H)
	l.Canvas = r.Size()
	l.Placement = l.Placement.Add(geom.Off(-r.X, -r.Y))
	return l
}
