// Package plan turns command sequences into executable layout plans.
//
// It provides two evaluation styles over the same command vocabulary:
//
//   - [Pipeline], a fixed-order builder where each command category occupies
//     one slot (last setter wins, orientation composes). The builder holds no
//     heap-allocated state.
//   - [ComputeLayoutSequential], which evaluates an arbitrary command list in
//     order, fusing it into a single-pass layout.
//
// Both produce an [IdealLayout] — the layout computed against a hypothetical
// full decode — plus a [DecoderRequest] of advisory hints. After the decoder
// reports what it actually did ([DecoderOffer]), [IdealLayout.Finalize]
// reconciles the two into the concrete residual work ([LayoutPlan]) the pixel
// engine executes.
package plan

import (
	"github.com/matzehuels/picplan/pkg/layout"
	"github.com/matzehuels/picplan/pkg/orient"
)

// Rotation is a manual rotation amount. It stacks with EXIF orientation.
type Rotation uint8

const (
	// Rotation90 rotates 90° clockwise.
	Rotation90 Rotation = iota
	// Rotation180 rotates 180°.
	Rotation180
	// Rotation270 rotates 270° clockwise (90° counter-clockwise).
	Rotation270
)

// Orientation returns the group element for the rotation.
func (r Rotation) Orientation() orient.Orientation {
	switch r {
	case Rotation90:
		return orient.Rotate90
	case Rotation180:
		return orient.Rotate180
	case Rotation270:
		return orient.Rotate270
	}
	return orient.Identity
}

// FlipAxis is the axis of a manual flip command.
type FlipAxis uint8

const (
	// FlipHorizontal mirrors left-right.
	FlipHorizontal FlipAxis = iota
	// FlipVertical mirrors top-bottom.
	FlipVertical
)

// Orientation returns the group element for the flip.
func (f FlipAxis) Orientation() orient.Orientation {
	if f == FlipVertical {
		return orient.FlipV
	}
	return orient.FlipH
}

// Padding is a per-side pixel padding with a fill color.
type Padding struct {
	Top    int         `json:"top"`
	Right  int         `json:"right"`
	Bottom int         `json:"bottom"`
	Left   int         `json:"left"`
	Color  layout.CanvasColor `json:"color"`
}

// IsZero reports whether no padding is applied.
func (p Padding) IsZero() bool {
	return p.Top == 0 && p.Right == 0 && p.Bottom == 0 && p.Left == 0
}

// Uniform returns equal padding on all sides.
func Uniform(n int, color layout.CanvasColor) Padding {
	return Padding{Top: n, Right: n, Bottom: n, Left: n, Color: color}
}

// add accumulates another padding; the later non-transparent color wins.
func (p Padding) add(o Padding) Padding {
	p.Top += o.Top
	p.Right += o.Right
	p.Bottom += o.Bottom
	p.Left += o.Left
	if !o.Color.IsTransparent() {
		p.Color = o.Color
	}
	return p
}

// commandKind discriminates Command variants.
type commandKind uint8

const (
	cmdAutoOrient commandKind = iota
	cmdRotate
	cmdFlip
	cmdCrop
	cmdRegion
	cmdConstrain
	cmdPad
)

// Command is a single processing instruction for the sequential evaluator.
// The variant set is closed; construct commands with the package functions.
type Command struct {
	kind       commandKind
	exif       int
	rotation   Rotation
	flip       FlipAxis
	crop       layout.SourceCrop
	region     layout.Region
	constraint layout.Constraint
	pad        Padding
}

// AutoOrient corrects for an EXIF orientation tag (1–8).
// Values outside 1–8 are ignored.
func AutoOrient(exif int) Command { return Command{kind: cmdAutoOrient, exif: exif} }

// Rotate applies a manual rotation in post-orientation coordinates.
func Rotate(r Rotation) Command { return Command{kind: cmdRotate, rotation: r} }

// Flip applies a manual mirror in post-orientation coordinates.
func Flip(axis FlipAxis) Command { return Command{kind: cmdFlip, flip: axis} }

// Crop selects a source region in post-orientation coordinates.
func Crop(c layout.SourceCrop) Command { return Command{kind: cmdCrop, crop: c} }

// RegionOf applies a crop-and-pad viewport in post-orientation coordinates.
func RegionOf(r layout.Region) Command { return Command{kind: cmdRegion, region: r} }

// Constrain fits the current image into target dimensions.
func Constrain(c layout.Constraint) Command { return Command{kind: cmdConstrain, constraint: c} }

// Pad adds padding around the image.
func Pad(top, right, bottom, left int, color layout.CanvasColor) Command {
	return Command{kind: cmdPad, pad: Padding{Top: top, Right: right, Bottom: bottom, Left: left, Color: color}}
}

// PadUniform adds equal padding on every side.
func PadUniform(n int, color layout.CanvasColor) Command {
	return Command{kind: cmdPad, pad: Uniform(n, color)}
}

// orientation returns the group element for orientation commands and
// Identity (ok=false) otherwise. Invalid EXIF values yield Identity, ok=true:
// they are silently ignored by design.
func (c Command) orientation() (orient.Orientation, bool) {
	switch c.kind {
	case cmdAutoOrient:
		o, valid := orient.FromEXIF(c.exif)
		if !valid {
			return orient.Identity, true
		}
		return o, true
	case cmdRotate:
		return c.rotation.Orientation(), true
	case cmdFlip:
		return c.flip.Orientation(), true
	}
	return orient.Identity, false
}
