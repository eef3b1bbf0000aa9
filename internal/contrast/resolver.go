package contrast

import "strconv"

// Theme colours returned when a theme is configured but a member is unset.
const (
	DefaultLight = "#FFFFFF"
	DefaultDark  = "#000000"
)

// LuminanceThreshold separates "light" backgrounds, which get the dark theme
// colour, from everything else.
const LuminanceThreshold = 186

// Theme is a two-colour palette. Empty members take DefaultLight/DefaultDark.
type Theme struct {
	Light string `json:"light,omitempty" yaml:"light,omitempty"`
	Dark  string `json:"dark,omitempty" yaml:"dark,omitempty"`
}

func (t Theme) light() string {
	if t.Light == "" {
		return DefaultLight
	}
	return t.Light
}

func (t Theme) dark() string {
	if t.Dark == "" {
		return DefaultDark
	}
	return t.Dark
}

// normalize validates both members and expands 3-digit values to 6 digits.
func (t Theme) normalize() (Theme, error) {
	light, err := normalizeThemeColor(t.Light)
	if err != nil {
		return Theme{}, err
	}
	dark, err := normalizeThemeColor(t.Dark)
	if err != nil {
		return Theme{}, err
	}
	return Theme{Light: light, Dark: dark}, nil
}

func normalizeThemeColor(hex string) (string, error) {
	if hex == "" {
		return "", nil
	}
	c, err := DecodeHex(hex)
	if err != nil {
		return "", err
	}
	if len(hex) == 7 || len(hex) == 6 {
		// already six digits; keep the caller's spelling
		if hex[0] != '#' {
			return "#" + hex, nil
		}
		return hex, nil
	}
	return EncodeHex(c), nil
}

// Luminance is the weighted RGB sum used as a brightness proxy.
func Luminance(c Color) float64 {
	// The conversions round each product, preventing fused multiply-add so
	// boundary values such as (186,186,186) land exactly on the threshold.
	return float64(float64(c.R)*0.299) + float64(float64(c.G)*0.587) + float64(float64(c.B)*0.114)
}

// Resolve picks the colour to render over a background of colour c.
//
// With a theme, backgrounds whose Luminance is strictly above
// LuminanceThreshold get theme's dark colour and all others its light colour.
// Without one, each channel is inverted.
func Resolve(c Color, theme *Theme) string {
	if theme != nil {
		if Luminance(c) > LuminanceThreshold {
			return theme.dark()
		}
		return theme.light()
	}
	return Invert(c)
}

// Invert returns "#rrggbb" with every channel replaced by 255 minus itself.
func Invert(c Color) string {
	return "#" +
		PadZero(hexByte(255-c.R), 2) +
		PadZero(hexByte(255-c.G), 2) +
		PadZero(hexByte(255-c.B), 2)
}

func hexByte(v uint8) string {
	return strconv.FormatUint(uint64(v), 16)
}
