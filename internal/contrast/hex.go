package contrast

import (
	"strconv"
	"strings"
)

// Color is an 8-bit RGB triple. uint8 channels keep every value in [0,255].
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// hexBias is added before formatting so the result always has seven hex
// digits; dropping the first leaves exactly six, leading zeros included.
const hexBias = 1 << 24

// EncodeHex packs c into a "#rrggbb" string (lower case).
func EncodeHex(c Color) string {
	packed := hexBias + int64(c.R)<<16 + int64(c.G)<<8 + int64(c.B)
	return "#" + strconv.FormatInt(packed, 16)[1:]
}

// DecodeHex parses a 3- or 6-digit hex colour with an optional leading '#'.
// Three-digit values are expanded by doubling each digit ("abc" -> "aabbcc").
func DecodeHex(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, ValidationError("decode", "Invalid HEX color")
	}

	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, ValidationError("decode", "Invalid HEX color")
		}
		ch[i] = uint8(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// NormalizeHex decodes and re-encodes hex, yielding the canonical "#rrggbb".
func NormalizeHex(hex string) (string, error) {
	c, err := DecodeHex(hex)
	if err != nil {
		return "", err
	}
	return EncodeHex(c), nil
}

// PadZero left-pads s with '0' up to n characters and then keeps only the
// last n, so longer inputs are truncated from the left. n <= 0 means 2.
func PadZero(s string, n int) string {
	if n <= 0 {
		n = 2
	}
	if len(s) < n {
		s = strings.Repeat("0", n-len(s)) + s
	}
	return s[len(s)-n:]
}
