// Package query parses URL-style resize instruction strings
// (`w=800&h=600&mode=crop`) and converts them into layout pipelines.
//
// Parsing is lenient: unknown keys, duplicate keys, and unparseable values
// produce warnings rather than errors, and non-layout keys (format, quality,
// effects) pass through untouched in [Instructions.Extras] for downstream
// consumers.
package query

import "github.com/matzehuels/picplan/pkg/layout"

// FitMode maps the `mode` parameter.
type FitMode uint8

const (
	// FitModeMax scales proportionally to fit within the target box; output
	// may be smaller than the target on one axis.
	FitModeMax FitMode = iota
	// FitModePad scales proportionally and pads to the exact target.
	FitModePad
	// FitModeCrop scales proportionally to fill the target and crops the
	// overflow.
	FitModeCrop
	// FitModeStretch distorts to the exact target dimensions.
	FitModeStretch
	// FitModeAspectCrop crops to the target aspect ratio without scaling.
	FitModeAspectCrop
)

// ScaleMode maps the `scale` parameter.
type ScaleMode uint8

const (
	// ScaleDown never upscales. Default.
	ScaleDown ScaleMode = iota
	// ScaleUp is parsed from `up`/`upscaleonly`. Conversion maps max, pad
	// and crop to their no-upscale constraint modes exactly as for
	// ScaleDown, so larger sources are still downscaled and smaller ones are
	// not upscaled; stretch always distorts.
	ScaleUp
	// ScaleBoth scales in either direction.
	ScaleBoth
	// ScaleCanvas is parsed from `canvas`/`upscalecanvas`. Conversion maps
	// max, pad and crop to their no-upscale constraint modes exactly as for
	// ScaleDown, so a smaller source keeps its size and is not padded out to
	// the target; stretch always distorts.
	ScaleCanvas
)

// Anchor1D is a one-dimensional anchor position.
type Anchor1D struct {
	// Fraction in [0, 1]: 0 = near edge, 1 = far edge.
	Fraction float64
}

// Anchor positions.
var (
	AnchorNear   = Anchor1D{0}
	AnchorCenter = Anchor1D{0.5}
	AnchorFar    = Anchor1D{1}
)

// Instructions is the parsed representation of a query string. Optional
// numeric fields use pointers; nil means the key was absent.
type Instructions struct {
	// W and H are the target dimensions (`w`/`width`, `h`/`height`).
	W *int
	H *int
	// LegacyMaxWidth and LegacyMaxHeight are `maxwidth`/`maxheight` upper
	// bounds, merged with W/H during conversion.
	LegacyMaxWidth  *int
	LegacyMaxHeight *int
	// Mode is the fit mode (`mode`).
	Mode *FitMode
	// Scale is the scale mode (`scale`).
	Scale *ScaleMode
	// Flip is the post-resize flip (`flip`): horizontal, vertical.
	Flip *[2]bool
	// SFlip is the source flip (`sflip`).
	SFlip *[2]bool
	// SRotate and Rotate are source and post-resize rotations in degrees
	// (0/90/180/270).
	SRotate *int
	Rotate  *int
	// AutoRotate controls EXIF orientation handling. Default true.
	AutoRotate *bool
	// Anchor positions crops and pads (`anchor`).
	Anchor *[2]Anchor1D
	// CGravity is the `c.gravity` override as percentages (0–100).
	CGravity *[2]float64
	// CropRect is `crop=x1,y1,x2,y2` in CropXUnits/CropYUnits space.
	CropRect *[4]float64
	// CropXUnits and CropYUnits define the crop coordinate space
	// (0 or absent = source pixels).
	CropXUnits *float64
	CropYUnits *float64
	// Zoom is the DPR/zoom multiplier.
	Zoom *float64
	// BgColor is the padding background (`bgcolor`).
	BgColor *layout.CanvasColor
	// Extras holds non-layout parameters preserved for downstream
	// consumers (format, quality, filters …).
	Extras map[string]string
}

// Warning is a non-fatal parse diagnostic.
type Warning struct {
	// Kind classifies the warning.
	Kind WarningKind
	// Key and Value are the offending query pair.
	Key   string
	Value string
	// Reason is set for WarningValueInvalid.
	Reason string
}

// WarningKind classifies parse warnings.
type WarningKind uint8

const (
	// WarningDuplicateKey: the key appeared more than once; the last value
	// wins.
	WarningDuplicateKey WarningKind = iota
	// WarningKeyNotRecognized: the key is neither a layout nor a known
	// non-layout parameter.
	WarningKeyNotRecognized
	// WarningValueInvalid: the key was recognized but its value was not
	// parseable.
	WarningValueInvalid
)

// String renders the warning for logs.
func (w Warning) String() string {
	switch w.Kind {
	case WarningDuplicateKey:
		return "duplicate key " + w.Key + "=" + w.Value
	case WarningKeyNotRecognized:
		return "unrecognized key " + w.Key + "=" + w.Value
	default:
		return "invalid value " + w.Key + "=" + w.Value + " (" + w.Reason + ")"
	}
}
