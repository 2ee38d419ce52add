package query

import (
	"strconv"
	"strings"

	"github.com/matzehuels/picplan/pkg/layout"
)

// nonLayoutKeys are recognized parameters that carry no geometry; they are
// preserved in Extras without a warning.
var nonLayoutKeys = map[string]bool{
	"format": true, "quality": true, "subsampling": true, "colors": true,
	"png.quality": true, "jpeg.progressive": true, "jpeg.turbo": true,
	"webp.lossless": true, "webp.quality": true, "f.sharpen": true,
	"f.dither": true, "down.filter": true, "up.filter": true,
	"ignoreicc": true, "ignore_icc_errors": true, "watermark": true,
	"s.grayscale": true, "s.sepia": true, "s.invert": true,
}

// Parse parses a query string (with or without a leading '?') into
// Instructions plus any non-fatal warnings. The parser tolerates malformed
// pairs the way image URL APIs must: empty pairs are skipped, missing '='
// yields an empty value, percent-escapes and '+' decode.
func Parse(q string) (Instructions, []Warning) {
	inst := Instructions{Extras: map[string]string{}}
	var warnings []Warning

	q = strings.TrimPrefix(strings.TrimSpace(q), "?")
	for _, pair := range strings.FieldsFunc(q, func(r rune) bool { return r == '&' || r == ';' }) {
		key, value, _ := strings.Cut(pair, "=")
		key = strings.ToLower(strings.TrimSpace(percentDecode(key)))
		value = strings.TrimSpace(percentDecode(value))
		if key == "" {
			continue
		}
		dispatchKey(key, value, &inst, &warnings)
	}
	return inst, warnings
}

func dispatchKey(key, value string, inst *Instructions, warnings *[]Warning) {
	switch key {
	case "w", "width":
		setInt(&inst.W, key, value, warnings)
	case "h", "height":
		setInt(&inst.H, key, value, warnings)
	case "maxwidth":
		setInt(&inst.LegacyMaxWidth, key, value, warnings)
	case "maxheight":
		setInt(&inst.LegacyMaxHeight, key, value, warnings)
	case "zoom", "dpr", "dppx":
		setFloat(&inst.Zoom, key, value, warnings)
	case "mode":
		if m, ok := parseFitMode(value); ok {
			setVal(&inst.Mode, m, key, value, warnings)
		} else {
			*warnings = append(*warnings, invalid(key, value, "unknown mode"))
		}
	case "stretch":
		// Legacy alias: stretch=fill means mode=stretch.
		if strings.EqualFold(value, "fill") {
			m := FitModeStretch
			setVal(&inst.Mode, m, key, value, warnings)
		}
	case "scale":
		if s, ok := parseScaleMode(value); ok {
			setVal(&inst.Scale, s, key, value, warnings)
		} else {
			*warnings = append(*warnings, invalid(key, value, "unknown scale"))
		}
	case "flip":
		if f, ok := parseFlip(value); ok {
			setVal(&inst.Flip, f, key, value, warnings)
		} else {
			*warnings = append(*warnings, invalid(key, value, "unknown flip"))
		}
	case "sflip", "sourceflip":
		if f, ok := parseFlip(value); ok {
			setVal(&inst.SFlip, f, key, value, warnings)
		} else {
			*warnings = append(*warnings, invalid(key, value, "unknown flip"))
		}
	case "srotate":
		if d, ok := parseRotation(value); ok {
			setVal(&inst.SRotate, d, key, value, warnings)
		} else {
			*warnings = append(*warnings, invalid(key, value, "rotation must be 0/90/180/270"))
		}
	case "rotate":
		if d, ok := parseRotation(value); ok {
			setVal(&inst.Rotate, d, key, value, warnings)
		} else {
			*warnings = append(*warnings, invalid(key, value, "rotation must be 0/90/180/270"))
		}
	case "autorotate":
		if b, ok := parseBool(value); ok {
			setVal(&inst.AutoRotate, b, key, value, warnings)
		} else {
			*warnings = append(*warnings, invalid(key, value, "not a boolean"))
		}
	case "c":
		// c=x1,y1,x2,y2 as percentages of the source.
		if c, ok := parseFloats4(value); ok {
			pct := [4]float64{c[0], c[1], c[2], c[3]}
			setVal(&inst.CropRect, pct, key, value, warnings)
			hundred := 100.0
			inst.CropXUnits, inst.CropYUnits = &hundred, &hundred
		} else {
			*warnings = append(*warnings, invalid(key, value, "expected x1,y1,x2,y2"))
		}
	case "crop":
		if c, ok := parseFloats4(value); ok {
			setVal(&inst.CropRect, c, key, value, warnings)
		} else {
			*warnings = append(*warnings, invalid(key, value, "expected x1,y1,x2,y2"))
		}
	case "cropxunits":
		setFloat(&inst.CropXUnits, key, value, warnings)
	case "cropyunits":
		setFloat(&inst.CropYUnits, key, value, warnings)
	case "anchor":
		if a, ok := parseAnchor(value); ok {
			setVal(&inst.Anchor, a, key, value, warnings)
		} else {
			*warnings = append(*warnings, invalid(key, value, "unknown anchor"))
		}
	case "c.gravity":
		if g, ok := parseFloats2(value); ok {
			setVal(&inst.CGravity, g, key, value, warnings)
		} else {
			*warnings = append(*warnings, invalid(key, value, "expected x,y"))
		}
	case "bgcolor", "s.bgcolor":
		if c, ok := ParseColor(value); ok {
			setVal(&inst.BgColor, c, key, value, warnings)
		} else {
			*warnings = append(*warnings, invalid(key, value, "not a color"))
		}
	default:
		if nonLayoutKeys[key] || strings.HasPrefix(key, "x-") {
			inst.Extras[key] = value
			return
		}
		*warnings = append(*warnings, Warning{Kind: WarningKeyNotRecognized, Key: key, Value: value})
	}
}

func invalid(key, value, reason string) Warning {
	return Warning{Kind: WarningValueInvalid, Key: key, Value: value, Reason: reason}
}

// setVal assigns through dst, warning on duplicates (last value wins).
func setVal[T any](dst **T, v T, key, value string, warnings *[]Warning) {
	if *dst != nil {
		*warnings = append(*warnings, Warning{Kind: WarningDuplicateKey, Key: key, Value: value})
	}
	*dst = &v
}

func setInt(dst **int, key, value string, warnings *[]Warning) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		*warnings = append(*warnings, invalid(key, value, "not an integer"))
		return
	}
	setVal(dst, n, key, value, warnings)
}

func setFloat(dst **float64, key, value string, warnings *[]Warning) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		*warnings = append(*warnings, invalid(key, value, "not a number"))
		return
	}
	setVal(dst, f, key, value, warnings)
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}

func parseFitMode(s string) (FitMode, bool) {
	switch strings.ToLower(s) {
	case "max":
		return FitModeMax, true
	case "pad":
		return FitModePad, true
	case "crop":
		return FitModeCrop, true
	case "stretch", "carve":
		return FitModeStretch, true
	case "aspectcrop":
		return FitModeAspectCrop, true
	}
	return 0, false
}

func parseScaleMode(s string) (ScaleMode, bool) {
	switch strings.ToLower(s) {
	case "down", "downscaleonly":
		return ScaleDown, true
	case "up", "upscaleonly":
		return ScaleUp, true
	case "both":
		return ScaleBoth, true
	case "canvas", "upscalecanvas":
		return ScaleCanvas, true
	}
	return 0, false
}

func parseFlip(s string) ([2]bool, bool) {
	switch strings.ToLower(s) {
	case "none", "":
		return [2]bool{false, false}, true
	case "h", "x":
		return [2]bool{true, false}, true
	case "v", "y":
		return [2]bool{false, true}, true
	case "both", "xy":
		return [2]bool{true, true}, true
	}
	return [2]bool{}, false
}

func parseRotation(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	// Normalize negatives and multiples of 360.
	n = ((n % 360) + 360) % 360
	if n%90 != 0 {
		return 0, false
	}
	return n, true
}

func parseAnchor(s string) ([2]Anchor1D, bool) {
	switch strings.ToLower(s) {
	case "topleft":
		return [2]Anchor1D{AnchorNear, AnchorNear}, true
	case "topcenter":
		return [2]Anchor1D{AnchorCenter, AnchorNear}, true
	case "topright":
		return [2]Anchor1D{AnchorFar, AnchorNear}, true
	case "middleleft":
		return [2]Anchor1D{AnchorNear, AnchorCenter}, true
	case "middlecenter":
		return [2]Anchor1D{AnchorCenter, AnchorCenter}, true
	case "middleright":
		return [2]Anchor1D{AnchorFar, AnchorCenter}, true
	case "bottomleft":
		return [2]Anchor1D{AnchorNear, AnchorFar}, true
	case "bottomcenter":
		return [2]Anchor1D{AnchorCenter, AnchorFar}, true
	case "bottomright":
		return [2]Anchor1D{AnchorFar, AnchorFar}, true
	}
	// Numeric form: "x,y" as percentages.
	if g, ok := parseFloats2(s); ok {
		return [2]Anchor1D{{g[0] / 100}, {g[1] / 100}}, true
	}
	return [2]Anchor1D{}, false
}

func parseFloats2(s string) ([2]float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]float64{}, false
	}
	var out [2]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [2]float64{}, false
		}
		out[i] = f
	}
	return out, true
}

func parseFloats4(s string) ([4]float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return [4]float64{}, false
	}
	var out [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [4]float64{}, false
		}
		out[i] = f
	}
	return out, true
}

// percentDecode decodes %XX escapes and '+' without the strictness of
// net/url: malformed escapes pass through literally.
func percentDecode(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '+':
			b.WriteByte(' ')
		case s[i] == '%' && i+2 < len(s):
			hi, okHi := hexDigit(s[i+1])
			lo, okLo := hexDigit(s[i+2])
			if okHi && okLo {
				b.WriteByte(hi<<4 | lo)
				i += 2
			} else {
				b.WriteByte(s[i])
			}
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func hexDigit(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// ParseColor parses a hex (#RGB, #RGBA, #RRGGBB, #RRGGBBAA) or named color.
func ParseColor(s string) (layout.CanvasColor, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return layout.CanvasColor{}, false
	}
	hex := strings.TrimPrefix(s, "#")
	if c, ok := parseHex(hex); ok {
		return c, true
	}
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, true
	}
	return layout.CanvasColor{}, false
}

func parseHex(hex string) (layout.CanvasColor, bool) {
	for i := 0; i < len(hex); i++ {
		if _, ok := hexDigit(hex[i]); !ok {
			return layout.CanvasColor{}, false
		}
	}
	nib := func(i int) uint8 { v, _ := hexDigit(hex[i]); return v }
	switch len(hex) {
	case 3:
		return layout.SRGB(nib(0)*17, nib(1)*17, nib(2)*17, 255), true
	case 4:
		return layout.SRGB(nib(0)*17, nib(1)*17, nib(2)*17, nib(3)*17), true
	case 6:
		return layout.SRGB(nib(0)<<4|nib(1), nib(2)<<4|nib(3), nib(4)<<4|nib(5), 255), true
	case 8:
		return layout.SRGB(nib(0)<<4|nib(1), nib(2)<<4|nib(3), nib(4)<<4|nib(5), nib(6)<<4|nib(7)), true
	}
	return layout.CanvasColor{}, false
}

// namedColors covers the CSS named colors image URLs use in practice.
var namedColors = map[string]layout.CanvasColor{
	"transparent": layout.Transparent(),
	"black":       layout.SRGB(0, 0, 0, 255),
	"white":       layout.SRGB(255, 255, 255, 255),
	"red":         layout.SRGB(255, 0, 0, 255),
	"lime":        layout.SRGB(0, 255, 0, 255),
	"blue":        layout.SRGB(0, 0, 255, 255),
	"green":       layout.SRGB(0, 128, 0, 255),
	"yellow":      layout.SRGB(255, 255, 0, 255),
	"cyan":        layout.SRGB(0, 255, 255, 255),
	"aqua":        layout.SRGB(0, 255, 255, 255),
	"magenta":     layout.SRGB(255, 0, 255, 255),
	"fuchsia":     layout.SRGB(255, 0, 255, 255),
	"gray":        layout.SRGB(128, 128, 128, 255),
	"grey":        layout.SRGB(128, 128, 128, 255),
	"silver":      layout.SRGB(192, 192, 192, 255),
	"maroon":      layout.SRGB(128, 0, 0, 255),
	"olive":       layout.SRGB(128, 128, 0, 255),
	"navy":        layout.SRGB(0, 0, 128, 255),
	"teal":        layout.SRGB(0, 128, 128, 255),
	"purple":      layout.SRGB(128, 0, 128, 255),
	"orange":      layout.SRGB(255, 165, 0, 255),
	"gold":        layout.SRGB(255, 215, 0, 255),
	"pink":        layout.SRGB(255, 192, 203, 255),
	"brown":       layout.SRGB(165, 42, 42, 255),
	"coral":       layout.SRGB(255, 127, 80, 255),
	"crimson":     layout.SRGB(220, 20, 60, 255),
	"indigo":      layout.SRGB(75, 0, 130, 255),
	"ivory":       layout.SRGB(255, 255, 240, 255),
	"khaki":       layout.SRGB(240, 230, 140, 255),
	"lavender":    layout.SRGB(230, 230, 250, 255),
	"salmon":      layout.SRGB(250, 128, 114, 255),
	"tan":         layout.SRGB(210, 180, 140, 255),
	"tomato":      layout.SRGB(255, 99, 71, 255),
	"turquoise":   layout.SRGB(64, 224, 208, 255),
	"violet":      layout.SRGB(238, 130, 238, 255),
	"wheat":       layout.SRGB(245, 222, 179, 255),
	"whitesmoke":  layout.SRGB(245, 245, 245, 255),
	"snow":        layout.SRGB(255, 250, 250, 255),
	"beige":       layout.SRGB(245, 245, 220, 255),
}
