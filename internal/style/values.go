// internal/style/values.go
package style

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xkilldash9x/reflow/internal/css"
)

// BaseFontSize is the root font size in pixels, used both as the font-size
// fallback and as the reference for em and rem conversion.
const BaseFontSize = 16.0

// Color is an 8-bit RGBA color value.
type Color struct {
	R, G, B, A uint8
}

// defaultColor is opaque black, the fallback for missing or unparsable
// color values.
var defaultColor = Color{R: 0, G: 0, B: 0, A: 255}

// cssColors maps the supported named colors to their RGBA values.
var cssColors = map[string]Color{
	"black":       {R: 0, G: 0, B: 0, A: 255},
	"white":       {R: 255, G: 255, B: 255, A: 255},
	"red":         {R: 255, G: 0, B: 0, A: 255},
	"green":       {R: 0, G: 128, B: 0, A: 255},
	"blue":        {R: 0, G: 0, B: 255, A: 255},
	"transparent": {R: 0, G: 0, B: 0, A: 0},
}

// DisplayType classifies how an element participates in layout.
type DisplayType int

const (
	// DisplayInline is the default when display is missing or unrecognized.
	DisplayInline DisplayType = iota
	DisplayBlock
	DisplayNone
)

// String returns the CSS keyword for the display type.
func (d DisplayType) String() string {
	switch d {
	case DisplayBlock:
		return "block"
	case DisplayNone:
		return "none"
	default:
		return "inline"
	}
}

// FontStyleType classifies the font-style property.
type FontStyleType int

const (
	// FontStyleNormal is the default when font-style is missing or unrecognized.
	FontStyleNormal FontStyleType = iota
	FontStyleItalic
	FontStyleOblique
)

// String returns the CSS keyword for the font style.
func (f FontStyleType) String() string {
	switch f {
	case FontStyleItalic:
		return "italic"
	case FontStyleOblique:
		return "oblique"
	default:
		return "normal"
	}
}

// -- Property Access --

// Raw returns the winning raw value for the property. With duplicate
// declarations the last one wins, which is what makes the append-only
// cascade in MatchingRules behave.
func (sn *StyledNode) Raw(p css.Property) (css.Value, bool) {
	for i := len(sn.Properties) - 1; i >= 0; i-- {
		if sn.Properties[i].Property == p {
			return sn.Properties[i].Value, true
		}
	}
	return "", false
}

// Lookup returns the winning raw value for the property, or fallback when
// the property was never declared.
func (sn *StyledNode) Lookup(p css.Property, fallback string) string {
	if v, ok := sn.Raw(p); ok {
		return string(v)
	}
	return fallback
}

// Color resolves the named property as a color. Missing or unparsable
// values resolve to opaque black.
func (sn *StyledNode) Color(p css.Property) Color {
	raw, ok := sn.Raw(p)
	if !ok {
		return defaultColor
	}
	c, ok := ParseColor(string(raw))
	if !ok {
		return defaultColor
	}
	return c
}

// Display resolves the display property. Missing or unrecognized values
// resolve to inline.
func (sn *StyledNode) Display() DisplayType {
	switch sn.Lookup(css.Display, "") {
	case "block":
		return DisplayBlock
	case "none":
		return DisplayNone
	default:
		return DisplayInline
	}
}

// FontStyle resolves the font-style property. Missing or unrecognized
// values resolve to normal.
func (sn *StyledNode) FontStyle() FontStyleType {
	switch sn.Lookup(css.FontStyle, "") {
	case "italic":
		return FontStyleItalic
	case "oblique":
		return FontStyleOblique
	default:
		return FontStyleNormal
	}
}

// FontFamily returns the declared font families in order of preference.
// The value is split on commas and each name is trimmed; duplicates are
// kept. Returns nil when font-family was never declared.
func (sn *StyledNode) FontFamily() []string {
	raw, ok := sn.Raw(css.FontFamily)
	if !ok {
		return nil
	}
	var families []string
	for _, part := range strings.Split(string(raw), ",") {
		if name := strings.TrimSpace(part); name != "" {
			families = append(families, name)
		}
	}
	return families
}

// FontSize resolves the font-size property to whole pixels, truncating any
// fractional part. Missing or non-convertible values resolve to 16.
func (sn *StyledNode) FontSize() int {
	raw, ok := sn.Raw(css.FontSize)
	if !ok {
		return int(BaseFontSize)
	}
	px, ok := Pixels(string(raw), BaseFontSize)
	if !ok {
		return int(BaseFontSize)
	}
	return int(px)
}

// Pixels converts a CSS length to pixels. Bare numbers and px are taken
// as-is, em and rem multiply by base, and pt converts at 96 per inch.
// Anything else, including percentages and keywords, does not convert.
func Pixels(value string, base float64) (float64, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasSuffix(v, "px"):
		return parseFloat(strings.TrimSuffix(v, "px"))
	case strings.HasSuffix(v, "rem"):
		f, ok := parseFloat(strings.TrimSuffix(v, "rem"))
		return f * base, ok
	case strings.HasSuffix(v, "em"):
		f, ok := parseFloat(strings.TrimSuffix(v, "em"))
		return f * base, ok
	case strings.HasSuffix(v, "pt"):
		f, ok := parseFloat(strings.TrimSuffix(v, "pt"))
		return f * 96.0 / 72.0, ok
	default:
		return parseFloat(v)
	}
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// -- Color Parsing --

// ParseColor parses a CSS color value: a supported named color, a hex
// color in #rgb, #rgba, #rrggbb, or #rrggbbaa form, or an rgb()/rgba()
// function. On failure it reports false; callers fall back to opaque
// black.
func ParseColor(value string) (Color, bool) {
	value = strings.ToLower(strings.TrimSpace(value))

	if c, ok := cssColors[value]; ok {
		return c, true
	}
	if strings.HasPrefix(value, "#") {
		return parseHexColor(value)
	}
	if strings.HasPrefix(value, "rgb") {
		return parseRGBColor(value)
	}
	return defaultColor, false
}

func parseHexColor(value string) (Color, bool) {
	hex := strings.TrimPrefix(value, "#")
	c := Color{A: 255}

	switch len(hex) {
	case 3, 4: // #rgb / #rgba, each digit doubled
		r, okR := hexDigit(hex[0])
		g, okG := hexDigit(hex[1])
		b, okB := hexDigit(hex[2])
		if !okR || !okG || !okB {
			return Color{}, false
		}
		c.R, c.G, c.B = r*17, g*17, b*17
		if len(hex) == 4 {
			a, okA := hexDigit(hex[3])
			if !okA {
				return Color{}, false
			}
			c.A = a * 17
		}
	case 6, 8: // #rrggbb / #rrggbbaa
		r, okR := hexPair(hex[0], hex[1])
		g, okG := hexPair(hex[2], hex[3])
		b, okB := hexPair(hex[4], hex[5])
		if !okR || !okG || !okB {
			return Color{}, false
		}
		c.R, c.G, c.B = r, g, b
		if len(hex) == 8 {
			a, okA := hexPair(hex[6], hex[7])
			if !okA {
				return Color{}, false
			}
			c.A = a
		}
	default:
		return Color{}, false
	}
	return c, true
}

func hexDigit(b byte) (uint8, bool) {
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

func hexPair(hi, lo byte) (uint8, bool) {
	h, okH := hexDigit(hi)
	l, okL := hexDigit(lo)
	return h<<4 | l, okH && okL
}

var rgbRegex = regexp.MustCompile(`rgba?\((.*?)\)`)

func parseRGBColor(value string) (Color, bool) {
	matches := rgbRegex.FindStringSubmatch(value)
	if len(matches) != 2 {
		return Color{}, false
	}

	// Accept both legacy comma syntax and space syntax with "/" for alpha.
	parts := strings.FieldsFunc(matches[1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, false
	}

	r, okR := parseColorComponent(parts[0], false)
	g, okG := parseColorComponent(parts[1], false)
	b, okB := parseColorComponent(parts[2], false)
	if !okR || !okG || !okB {
		return Color{}, false
	}
	c := Color{R: r, G: g, B: b, A: 255}

	if len(parts) == 4 {
		a, okA := parseColorComponent(parts[3], true)
		if !okA {
			return Color{}, false
		}
		c.A = a
	}
	return c, true
}

// parseColorComponent converts one rgb() component to a byte. Percentages
// scale from 100 to 255; a bare alpha scales from 1.0 to 255.
func parseColorComponent(s string, isAlpha bool) (uint8, bool) {
	s = strings.TrimSpace(s)
	isPercent := strings.HasSuffix(s, "%")
	if isPercent {
		s = strings.TrimSuffix(s, "%")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if isPercent {
		f = f / 100.0 * 255.0
	} else if isAlpha {
		f = f * 255.0
	}
	return uint8(clamp(f+0.5, 0, 255)), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
