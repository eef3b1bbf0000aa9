package imaging

import (
	"errors"
	"testing"

	"github.com/ironsheep/contrast-mcp/internal/contrast"
)

func TestDescribe_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		color   contrast.Color
		wantHex string
		wantHSL HSLColor
	}{
		{"pure red", contrast.Color{R: 255}, "#ff0000", HSLColor{0, 100, 50}},
		{"pure green", contrast.Color{G: 255}, "#00ff00", HSLColor{120, 100, 50}},
		{"pure blue", contrast.Color{B: 255}, "#0000ff", HSLColor{240, 100, 50}},
		{"white", contrast.Color{R: 255, G: 255, B: 255}, "#ffffff", HSLColor{0, 0, 100}},
		{"black", contrast.Color{}, "#000000", HSLColor{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.color)
			if got.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", got.Hex, tt.wantHex)
			}
			if got.RGB != tt.color {
				t.Errorf("RGB: got %v, want %v", got.RGB, tt.color)
			}
			if got.HSL != tt.wantHSL {
				t.Errorf("HSL: got %+v, want %+v", got.HSL, tt.wantHSL)
			}
		})
	}
}

func TestDescribe_Luminance(t *testing.T) {
	got := Describe(contrast.Color{R: 186, G: 186, B: 186})
	if got.Luminance != 186 {
		t.Errorf("Luminance: got %v, want 186", got.Luminance)
	}
}

func TestDescribeHex(t *testing.T) {
	got, err := DescribeHex("#abc")
	if err != nil {
		t.Fatalf("DescribeHex failed: %v", err)
	}
	if got.Hex != "#aabbcc" {
		t.Errorf("Hex: got %s, want #aabbcc", got.Hex)
	}

	if _, err := DescribeHex("#abcd"); !errors.Is(err, contrast.ErrValidation) {
		t.Errorf("DescribeHex error = %v, want validation error", err)
	}
}
