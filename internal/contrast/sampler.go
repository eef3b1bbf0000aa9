package contrast

import "fmt"

// DefaultStride is the number of pixels between samples when none is given.
const DefaultStride = 5

// MaxRasterPixels bounds the size of a raster buffer (256 MiB of RGBA).
const MaxRasterPixels = 1 << 26

// CheckRasterSize reports a ValidationError when a width×height buffer has a
// negative dimension or more than MaxRasterPixels pixels.
func CheckRasterSize(width, height float64) error {
	if !(width >= 0 && height >= 0) {
		return ValidationError("raster", fmt.Sprintf("negative dimensions %vx%v", width, height))
	}
	if !(width <= MaxRasterPixels && height <= MaxRasterPixels && width*height <= MaxRasterPixels) {
		return ValidationError("raster",
			fmt.Sprintf("raster of %vx%v exceeds %d pixels", width, height, MaxRasterPixels))
	}
	return nil
}

// RasterBuffer is a row-major RGBA pixel buffer, 4 bytes per pixel.
// len(Pix) is always Width*Height*4.
type RasterBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRasterBuffer wraps pix, checking its length against the dimensions.
func NewRasterBuffer(width, height int, pix []uint8) (*RasterBuffer, error) {
	if !(width >= 0 && height >= 0) {
		return nil, ValidationError("raster", fmt.Sprintf("negative dimensions %dx%d", width, height))
	}
	if len(pix) != width*height*4 {
		return nil, ValidationError("raster",
			fmt.Sprintf("pixel data length %d does not match %dx%d", len(pix), width, height))
	}
	return &RasterBuffer{Width: width, Height: height, Pix: pix}, nil
}

// AverageColor averages the R, G and B channels of every stride-th pixel,
// starting with the first. Alpha is ignored. Channel averages use truncating
// integer division. stride <= 0 means DefaultStride.
func AverageColor(buf *RasterBuffer, stride int) (Color, error) {
	if stride <= 0 {
		stride = DefaultStride
	}
	if buf == nil {
		return Color{}, ValidationError("sample", "no raster buffer")
	}

	step := 4 * stride
	var r, g, b, count uint64
	for i := 0; i+2 < len(buf.Pix); i += step {
		r += uint64(buf.Pix[i])
		g += uint64(buf.Pix[i+1])
		b += uint64(buf.Pix[i+2])
		count++
	}

	if count == 0 {
		return Color{}, ValidationError("sample", "sample count is zero")
	}
	return Color{R: uint8(r / count), G: uint8(g / count), B: uint8(b / count)}, nil
}
