package query

import (
	"math"

	"github.com/matzehuels/picplan/pkg/geom"
	"github.com/matzehuels/picplan/pkg/layout"
	"github.com/matzehuels/picplan/pkg/orient"
	"github.com/matzehuels/picplan/pkg/plan"
)

// ToPipeline builds a layout pipeline from the instructions.
//
// sourceW and sourceH are the pre-orientation source dimensions; exif is the
// EXIF orientation tag (1–8) when known, or 0. Dimension resolution,
// mode×scale mapping, zoom, and the post-rotate target swap follow the RIAPI
// conventions.
func (inst Instructions) ToPipeline(sourceW, sourceH, exif int) (plan.Pipeline, error) {
	// 1. Source orientation: autorotate + srotate + sflip.
	srcOrient := orient.Identity
	if inst.AutoRotate == nil || *inst.AutoRotate {
		if o, ok := orient.FromEXIF(exif); ok {
			srcOrient = srcOrient.Compose(o)
		}
	}
	if inst.SRotate != nil {
		srcOrient = srcOrient.Compose(rotationOrient(*inst.SRotate))
	}
	if inst.SFlip != nil {
		if inst.SFlip[0] {
			srcOrient = srcOrient.Compose(orient.FlipH)
		}
		if inst.SFlip[1] {
			srcOrient = srcOrient.Compose(orient.FlipV)
		}
	}

	// 2. Post-resize orientation: rotate + flip. These fold into the source
	// transform; an axis swap is compensated by swapping the target.
	postOrient := orient.Identity
	if inst.Rotate != nil {
		postOrient = postOrient.Compose(rotationOrient(*inst.Rotate))
	}
	if inst.Flip != nil {
		if inst.Flip[0] {
			postOrient = postOrient.Compose(orient.FlipH)
		}
		if inst.Flip[1] {
			postOrient = postOrient.Compose(orient.FlipV)
		}
	}
	fullOrient := srcOrient.Compose(postOrient)

	// 3. Post-orientation display dimensions for crop and target resolution.
	display := srcOrient.TransformDimensions(geom.Sz(sourceW, sourceH))

	// 4. Crop.
	sourceCrop := inst.resolveCrop(display.W, display.H)
	effW, effH := display.W, display.H
	if sourceCrop != nil {
		r := sourceCrop.Resolve(display.W, display.H)
		effW, effH = r.W, r.H
	}

	// 5. Target dimensions with zoom and post-rotate swap.
	targetW, targetH := inst.resolveDimensions(effW, effH)
	zoom := 1.0
	if inst.Zoom != nil {
		zoom = min(max(*inst.Zoom, 0.00008), 80000)
	}
	if zoom != 1 {
		if targetW > 0 {
			targetW = max(int(math.Round(float64(targetW)*zoom)), 1)
		}
		if targetH > 0 {
			targetH = max(int(math.Round(float64(targetH)*zoom)), 1)
		}
	}
	if postOrient.SwapsAxes() {
		targetW, targetH = targetH, targetW
	}

	// 6. Mode and scale.
	mode := FitModePad
	if targetW < 0 && targetH < 0 {
		mode = FitModeMax
	} else if inst.Mode != nil {
		mode = *inst.Mode
	}
	scale := ScaleDown
	if inst.Scale != nil {
		scale = *inst.Scale
	}

	// 7. Build the pipeline.
	p := plan.New(sourceW, sourceH).Orient(fullOrient)
	if sourceCrop != nil {
		p = p.Crop(*sourceCrop)
	}

	cm, ok := mapModeScale(mode, scale, targetW, targetH, effW, effH)
	if !ok {
		return p, nil
	}

	c := layout.Constraint{
		Mode:    cm,
		Width:   targetW,
		Height:  targetH,
		Gravity: inst.resolveGravity(),
	}
	if inst.BgColor != nil {
		c.CanvasColor = *inst.BgColor
	}
	return p.Constrain(c), nil
}

// resolveCrop converts crop parameters to a fractional SourceCrop.
func (inst Instructions) resolveCrop(displayW, displayH int) *layout.SourceCrop {
	if inst.CropRect == nil {
		return nil
	}
	x1, y1, x2, y2 := inst.CropRect[0], inst.CropRect[1], inst.CropRect[2], inst.CropRect[3]

	xu := float64(displayW)
	if inst.CropXUnits != nil && *inst.CropXUnits > 0 {
		xu = *inst.CropXUnits
	}
	yu := float64(displayH)
	if inst.CropYUnits != nil && *inst.CropYUnits > 0 {
		yu = *inst.CropYUnits
	}

	fx1, fy1 := x1/xu, y1/yu
	fx2, fy2 := x2/xu, y2/yu

	// Negative coordinates measure from the far edge.
	if fx1 < 0 {
		fx1++
	}
	if fy1 < 0 {
		fy1++
	}
	if fx2 <= 0 {
		fx2++
	}
	if fy2 <= 0 {
		fy2++
	}

	x := min(max(fx1, 0), 1)
	y := min(max(fy1, 0), 1)
	w := min(max(fx2-fx1, 0), 1-x)
	h := min(max(fy2-fy1, 0), 1-y)
	if w <= 0 || h <= 0 {
		return nil
	}
	c := layout.CropPercent(x, y, w, h)
	return &c
}

// resolveDimensions merges w/h with the legacy maxwidth/maxheight bounds.
// Returns -1 for an unconstrained axis.
func (inst Instructions) resolveDimensions(sourceW, sourceH int) (int, int) {
	get := func(p *int) int {
		if p == nil {
			return -1
		}
		return max(*p, -1)
	}
	w, h := get(inst.W), get(inst.H)
	mw, mh := get(inst.LegacyMaxWidth), get(inst.LegacyMaxHeight)

	// When both a value and its max are given, the smaller wins.
	if mw > 0 && w > 0 {
		w, mw = min(w, mw), -1
	}
	if mh > 0 && h > 0 {
		h, mh = min(h, mh), -1
	}

	// Cross-dimension constraints: a max on one axis limits the other
	// through the aspect ratio.
	if w > 0 && mh > 0 && sourceW > 0 {
		aspectH := int(math.Round(float64(w) * float64(sourceH) / float64(sourceW)))
		if aspectH > 0 {
			mh = min(mh, aspectH)
		}
	}
	if h > 0 && mw > 0 && sourceH > 0 {
		aspectW := int(math.Round(float64(h) * float64(sourceW) / float64(sourceH)))
		if aspectW > 0 {
			mw = min(mw, aspectW)
		}
	}

	w = max(w, mw)
	h = max(h, mh)
	if w < 1 {
		w = -1
	}
	if h < 1 {
		h = -1
	}
	return w, h
}

// resolveGravity picks c.gravity over anchor over center.
func (inst Instructions) resolveGravity() layout.Gravity {
	if inst.CGravity != nil {
		return layout.Fractional(
			min(max(inst.CGravity[0]/100, 0), 1),
			min(max(inst.CGravity[1]/100, 0), 1),
		)
	}
	if inst.Anchor != nil {
		return layout.Fractional(inst.Anchor[0].Fraction, inst.Anchor[1].Fraction)
	}
	return layout.Center()
}

func rotationOrient(degrees int) orient.Orientation {
	switch degrees {
	case 90:
		return orient.Rotate90
	case 180:
		return orient.Rotate180
	case 270:
		return orient.Rotate270
	}
	return orient.Identity
}

// mapModeScale maps mode × scale onto a constraint mode. ok=false means no
// constraint should be applied at all.
func mapModeScale(mode FitMode, scale ScaleMode, targetW, targetH, sourceW, sourceH int) (layout.ConstraintMode, bool) {
	if targetW < 0 && targetH < 0 {
		return 0, false
	}

	// Stretch without upscaling only distorts when the source overflows the
	// target on at least one axis.
	if mode == FitModeStretch && scale == ScaleDown {
		tw, th := targetW, targetH
		if tw < 0 {
			tw = math.MaxInt32
		}
		if th < 0 {
			th = math.MaxInt32
		}
		if sourceW <= tw && sourceH <= th {
			return 0, false
		}
	}

	switch mode {
	case FitModeAspectCrop:
		return layout.AspectCrop, true
	case FitModeMax:
		if scale == ScaleBoth {
			return layout.Fit, true
		}
		return layout.Within, true
	case FitModePad:
		if scale == ScaleBoth {
			return layout.FitPad, true
		}
		return layout.WithinPad, true
	case FitModeCrop:
		if scale == ScaleBoth {
			return layout.FitCrop, true
		}
		return layout.WithinCrop, true
	default: // FitModeStretch
		return layout.Distort, true
	}
}
