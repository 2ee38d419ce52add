// Package svg renders a layout plan as an annotated step diagram: a vertical
// sequence of panels showing each transformation the pixel engine will
// perform — source → trim → orient → resize → canvas → edge extend.
//
// The output is a self-contained SVG document. Panels are scaled to a common
// maximum extent so wildly different image sizes stay readable; each panel
// is labelled with the operation and its dimensions.
package svg

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/picplan/pkg/geom"
	"github.com/matzehuels/picplan/pkg/layout"
	"github.com/matzehuels/picplan/pkg/plan"
)

const (
	maxPanelW = 300.0
	maxPanelH = 200.0
	panelGap  = 50.0
	marginX   = 50.0
	marginTop = 30.0
	labelH    = 22.0
)

// outerRole describes what a panel's background area represents.
type outerRole uint8

const (
	// contentFill: content covers the whole panel.
	contentFill outerRole = iota
	// imageDiscard: the outer area is discarded image data (crop, trim).
	imageDiscard
	// padding: the outer area is added canvas padding.
	padding
)

// step is one panel in the diagram.
type step struct {
	label string
	// size is the full extent this panel represents.
	size geom.Size
	// inner is the highlighted sub-rect (crop window, placed image,
	// content band); zero means the content fills the panel.
	inner geom.Rect
	role  outerRole
	// fill colors the outer area for padding panels.
	fill layout.CanvasColor
}

// Render produces the step diagram for an ideal layout and its finalized
// plan.
func Render(ideal plan.IdealLayout, lp plan.LayoutPlan) []byte {
	steps := buildSteps(ideal, lp)
	return renderSteps(steps)
}

// buildSteps derives the panel sequence from the plan. Panels for no-op
// stages are skipped.
func buildSteps(ideal plan.IdealLayout, lp plan.LayoutPlan) []step {
	var steps []step

	src := ideal.SourceSize()
	steps = append(steps, step{
		label: fmt.Sprintf("source %d×%d", src.W, src.H),
		size:  src,
	})

	// Decoder crop or residual trim.
	if crop := lp.DecoderRequest.Crop; crop != nil {
		steps = append(steps, step{
			label: fmt.Sprintf("crop %d×%d @ (%d, %d)", crop.W, crop.H, crop.X, crop.Y),
			size:  src,
			inner: *crop,
			role:  imageDiscard,
		})
	} else if lp.Trim != nil {
		steps = append(steps, step{
			label: fmt.Sprintf("trim %d×%d @ (%d, %d)", lp.Trim.W, lp.Trim.H, lp.Trim.X, lp.Trim.Y),
			size:  src,
			inner: *lp.Trim,
			role:  imageDiscard,
		})
	}

	if !lp.RemainingOrientation.IsIdentity() {
		oriented := lp.RemainingOrientation.TransformDimensions(croppedSize(ideal, src))
		steps = append(steps, step{
			label: fmt.Sprintf("orient %s → %d×%d", lp.RemainingOrientation, oriented.W, oriented.H),
			size:  oriented,
		})
	}

	if !lp.ResizeIsIdentity && !ideal.Layout.IsBlank() {
		steps = append(steps, step{
			label: fmt.Sprintf("resize %d×%d", lp.ResizeTo.W, lp.ResizeTo.H),
			size:  lp.ResizeTo,
		})
	}

	// Canvas placement (padding or blank canvas).
	if lp.Canvas != lp.ResizeTo || ideal.Layout.IsBlank() {
		st := step{
			label: fmt.Sprintf("canvas %d×%d", lp.Canvas.W, lp.Canvas.H),
			size:  lp.Canvas,
			role:  padding,
			fill:  lp.CanvasColor,
		}
		if !ideal.Layout.IsBlank() {
			st.inner = geom.Rect{
				X: lp.Placement.X, Y: lp.Placement.Y,
				W: lp.ResizeTo.W, H: lp.ResizeTo.H,
			}
		}
		steps = append(steps, st)
	}

	// Extend-alignment band.
	if cs := lp.ContentSize; cs != nil {
		steps = append(steps, step{
			label: fmt.Sprintf("extend %d×%d → %d×%d", cs.W, cs.H, lp.Canvas.W, lp.Canvas.H),
			size:  lp.Canvas,
			inner: geom.Rc(0, 0, cs.W, cs.H),
			role:  padding,
		})
	}

	return steps
}

func croppedSize(ideal plan.IdealLayout, src geom.Size) geom.Size {
	if ideal.SourceCrop != nil {
		return ideal.SourceCrop.Size()
	}
	return src
}

// scaleToFit returns panel pixel dimensions and the scale factor for a step
// size.
func scaleToFit(s geom.Size) (w, h, scale float64) {
	scale = min(maxPanelW/float64(s.W), maxPanelH/float64(s.H))
	return float64(s.W) * scale, float64(s.H) * scale, scale
}

func renderSteps(steps []step) []byte {
	// First pass: total document size.
	totalH := marginTop
	maxW := 0.0
	for _, st := range steps {
		w, h, _ := scaleToFit(st.size)
		totalH += labelH + h + panelGap
		maxW = max(maxW, w)
	}
	docW := maxW + 2*marginX
	docH := totalH

	var buf bytes.Buffer
	fmt.Fprintf(&buf,
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		docW, docH, docW, docH)
	buf.WriteString(`<style>
    .label { font: 13px sans-serif; fill: #333; }
    .content { fill: #7aa7d6; stroke: #34567f; stroke-width: 1; }
    .discard { fill: #c9d9ec; stroke: #9ab0c9; stroke-width: 1; stroke-dasharray: 4 3; }
    .padding { fill: #ffffff; stroke: #9ab0c9; stroke-width: 1; }
    .arrow { stroke: #666; stroke-width: 1.5; }
  </style>
`)

	y := marginTop
	for i, st := range steps {
		w, h, scale := scaleToFit(st.size)
		x := marginX + (maxW-w)/2

		fmt.Fprintf(&buf, `<text class="label" x="%.1f" y="%.1f">%s</text>`+"\n",
			x, y+14, escapeXML(st.label))
		panelTop := y + labelH

		switch st.role {
		case contentFill:
			fmt.Fprintf(&buf, `<rect class="content" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
				x, panelTop, w, h)
		case imageDiscard:
			fmt.Fprintf(&buf, `<rect class="discard" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
				x, panelTop, w, h)
			drawInner(&buf, "content", x, panelTop, st.inner, scale)
		case padding:
			fmt.Fprintf(&buf, `<rect class="padding" x="%.1f" y="%.1f" width="%.1f" height="%.1f"%s/>`+"\n",
				x, panelTop, w, h, fillAttr(st.fill))
			if !st.inner.IsEmpty() {
				drawInner(&buf, "content", x, panelTop, st.inner, scale)
			}
		}

		if i < len(steps)-1 {
			cx := marginX + maxW/2
			fmt.Fprintf(&buf, `<line class="arrow" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
				cx, panelTop+h+8, cx, panelTop+h+panelGap-8)
			fmt.Fprintf(&buf, `<path class="arrow" d="M %.1f %.1f l -4 -7 l 8 0 z" fill="#666"/>`+"\n",
				cx, panelTop+h+panelGap-6)
		}
		y = panelTop + h + panelGap
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func drawInner(buf *bytes.Buffer, class string, px, py float64, r geom.Rect, scale float64) {
	fmt.Fprintf(buf, `<rect class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
		class,
		px+float64(r.X)*scale, py+float64(r.Y)*scale,
		float64(r.W)*scale, float64(r.H)*scale)
}

// fillAttr renders an explicit fill attribute for non-transparent canvas
// colors; transparent canvases keep the stylesheet default.
func fillAttr(c layout.CanvasColor) string {
	switch c.Kind {
	case layout.ColorSRGB:
		return fmt.Sprintf(` fill="rgba(%d,%d,%d,%.3f)"`, c.R, c.G, c.B, float64(c.A)/255)
	case layout.ColorLinear:
		// Approximate: linear values are emitted as-is; the diagram is
		// illustrative, not color-managed.
		return fmt.Sprintf(` fill="rgba(%d,%d,%d,%.3f)"`,
			clamp255(c.LinR), clamp255(c.LinG), clamp255(c.LinB), float64(c.LinA))
	}
	return ""
}

func clamp255(v float32) int {
	return int(min(max(float64(v), 0), 1) * 255)
}

func escapeXML(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
