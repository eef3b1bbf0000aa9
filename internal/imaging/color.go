package imaging

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/contrast-mcp/internal/contrast"
)

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorReport contains a color value in several representations.
//
//   - Hex: "#rrggbb" as produced by contrast.EncodeHex
//   - RGB: 8-bit components
//   - HSL: perceptual representation, for humans reading tool output
//   - Luminance: the brightness proxy the theme threshold is compared against
type ColorReport struct {
	Hex       string         `json:"hex"`
	RGB       contrast.Color `json:"rgb"`
	HSL       HSLColor       `json:"hsl"`
	Luminance float64        `json:"luminance"`
}

// Describe reports c in every representation.
func Describe(c contrast.Color) ColorReport {
	return ColorReport{
		Hex:       contrast.EncodeHex(c),
		RGB:       c,
		HSL:       toHSL(c),
		Luminance: contrast.Luminance(c),
	}
}

// DescribeHex decodes hex and reports it. Malformed input is a contrast
// validation error.
func DescribeHex(hex string) (ColorReport, error) {
	c, err := contrast.DecodeHex(hex)
	if err != nil {
		return ColorReport{}, err
	}
	return Describe(c), nil
}

// toHSL truncates go-colorful's fractional HSL to whole degrees and percent.
func toHSL(c contrast.Color) HSLColor {
	h, s, l := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hsl()
	return HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)}
}
