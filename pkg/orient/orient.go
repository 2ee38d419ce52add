// Package orient models image orientation as the 8-element D4 dihedral group.
//
// Every EXIF orientation tag (1–8) maps one-to-one onto a group element.
// Elements decompose into a clockwise quarter-turn rotation (0–3) optionally
// followed by a horizontal flip; composition and inversion follow the D4
// group law, verified against the full Cayley table in the tests.
//
// The package also provides the two coordinate transforms the layout engine
// needs: dimension swapping for axis-swapping elements, and mapping a
// rectangle from post-orientation (display) space back to pre-orientation
// (source) space.
package orient

import (
	"fmt"

	"github.com/matzehuels/picplan/pkg/geom"
)

// Orientation is an element of the D4 dihedral group, identified by its EXIF
// tag value. The zero value is Identity.
//
// Decomposition of each element into rotation quarters (clockwise) + flip:
//
//	Identity    0°        -        EXIF 1
//	FlipH       0°        flip     EXIF 2
//	Rotate180   180°      -        EXIF 3
//	FlipV       180°      flip     EXIF 4
//	Transpose   90°       flip     EXIF 5  (swaps axes)
//	Rotate90    90°       -        EXIF 6  (swaps axes)
//	Transverse  270°      flip     EXIF 7  (swaps axes)
//	Rotate270   270°      -        EXIF 8  (swaps axes)
type Orientation uint8

const (
	// Identity applies no transformation. EXIF 1.
	Identity Orientation = iota
	// FlipH mirrors left-right. EXIF 2.
	FlipH
	// Rotate180 rotates half a turn. EXIF 3.
	Rotate180
	// FlipV mirrors top-bottom (= Rotate180 then FlipH). EXIF 4.
	FlipV
	// Transpose reflects over the main diagonal (= Rotate90 then FlipH). EXIF 5.
	Transpose
	// Rotate90 rotates a quarter turn clockwise. EXIF 6.
	Rotate90
	// Transverse reflects over the anti-diagonal (= Rotate270 then FlipH). EXIF 7.
	Transverse
	// Rotate270 rotates a quarter turn counter-clockwise. EXIF 8.
	Rotate270
)

// All lists every orientation in EXIF order (tag value = index + 1).
var All = [8]Orientation{
	Identity, FlipH, Rotate180, FlipV, Transpose, Rotate90, Transverse, Rotate270,
}

// FromEXIF maps an EXIF orientation tag (1–8) to an Orientation.
// Values outside 1–8 return Identity and ok=false.
func FromEXIF(value int) (o Orientation, ok bool) {
	if value < 1 || value > 8 {
		return Identity, false
	}
	return All[value-1], true
}

// EXIF returns the EXIF tag value (1–8) for the orientation.
func (o Orientation) EXIF() int {
	switch o {
	case Identity:
		return 1
	case FlipH:
		return 2
	case Rotate180:
		return 3
	case FlipV:
		return 4
	case Transpose:
		return 5
	case Rotate90:
		return 6
	case Transverse:
		return 7
	case Rotate270:
		return 8
	}
	return 1
}

// String returns the element name.
func (o Orientation) String() string {
	switch o {
	case Identity:
		return "identity"
	case FlipH:
		return "flip-h"
	case Rotate180:
		return "rotate-180"
	case FlipV:
		return "flip-v"
	case Transpose:
		return "transpose"
	case Rotate90:
		return "rotate-90"
	case Transverse:
		return "transverse"
	case Rotate270:
		return "rotate-270"
	}
	return fmt.Sprintf("orientation(%d)", uint8(o))
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (o Orientation) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// IsIdentity reports whether the orientation is the identity element.
func (o Orientation) IsIdentity() bool { return o == Identity }

// SwapsAxes reports whether applying the orientation exchanges width and
// height, i.e. the rotation component is an odd number of quarter turns.
func (o Orientation) SwapsAxes() bool {
	r, _ := o.decompose()
	return r&1 == 1
}

// decompose splits the element into (rotationQuarters, flip) where rotation
// is clockwise quarter turns applied before the optional horizontal flip.
func (o Orientation) decompose() (rotation int, flip bool) {
	switch o {
	case Identity:
		return 0, false
	case FlipH:
		return 0, true
	case Rotate90:
		return 1, false
	case Transpose:
		return 1, true
	case Rotate180:
		return 2, false
	case FlipV:
		return 2, true
	case Rotate270:
		return 3, false
	case Transverse:
		return 3, true
	}
	return 0, false
}

// byRotFlip indexes elements by rotation*2 + flip.
var byRotFlip = [8]Orientation{
	Identity, FlipH, Rotate90, Transpose, Rotate180, FlipV, Rotate270, Transverse,
}

// fromRotationFlip reassembles an element from (rotationQuarters mod 4, flip).
func fromRotationFlip(rotation int, flip bool) Orientation {
	i := (rotation & 3) * 2
	if flip {
		i++
	}
	return byRotFlip[i]
}

// Compose returns the element equivalent to applying o first, then other.
//
// When o carries no flip the rotations add; under a flip the second rotation
// acts mirrored, so rotations subtract and the flip parity toggles.
func (o Orientation) Compose(other Orientation) Orientation {
	r1, f1 := o.decompose()
	r2, f2 := other.decompose()
	if !f1 {
		return fromRotationFlip(r1+r2, f2)
	}
	return fromRotationFlip(r1-r2+4, !f2)
}

// Inverse returns the element i with o.Compose(i) == Identity.
// Flipped elements are involutions; pure rotations invert by negating the
// rotation.
func (o Orientation) Inverse() Orientation {
	r, f := o.decompose()
	if f {
		return o
	}
	return fromRotationFlip(4-r, false)
}

// TransformDimensions maps source dimensions to display dimensions: width and
// height swap exactly when the element swaps axes.
func (o Orientation) TransformDimensions(s geom.Size) geom.Size {
	if o.SwapsAxes() {
		return s.Swap()
	}
	return s
}

// TransformRectToSource maps a rectangle from post-orientation (display)
// coordinates back to pre-orientation (source) coordinates, given the source
// dimensions. For axis-swapping elements the rect's width and height swap.
func (o Orientation) TransformRectToSource(r geom.Rect, sourceW, sourceH int) geom.Rect {
	switch o {
	case Identity:
		return r
	case FlipH:
		return geom.Rc(sourceW-r.X-r.W, r.Y, r.W, r.H)
	case Rotate90:
		return geom.Rc(r.Y, sourceH-r.X-r.W, r.H, r.W)
	case Transpose:
		return geom.Rc(r.Y, r.X, r.H, r.W)
	case Rotate180:
		return geom.Rc(sourceW-r.X-r.W, sourceH-r.Y-r.H, r.W, r.H)
	case FlipV:
		return geom.Rc(r.X, sourceH-r.Y-r.H, r.W, r.H)
	case Rotate270:
		return geom.Rc(sourceW-r.Y-r.H, r.X, r.H, r.W)
	case Transverse:
		return geom.Rc(sourceW-r.Y-r.H, sourceH-r.X-r.W, r.H, r.W)
	}
	return r
}
