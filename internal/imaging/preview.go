package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/contrast-mcp/internal/contrast"
)

// PreviewResult contains a rendered raster buffer.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Preview encodes the pixels a target's colour is averaged from as a PNG.
// A scale other than 1 resizes the result with nearest-neighbour sampling so
// individual pixels stay distinguishable.
func Preview(buf *contrast.RasterBuffer, scale float64) (*PreviewResult, error) {
	if buf == nil || buf.Width == 0 || buf.Height == 0 {
		return nil, contrast.ValidationError("preview", "raster buffer is empty")
	}

	var img image.Image = &image.RGBA{
		Pix:    buf.Pix,
		Stride: buf.Width * 4,
		Rect:   image.Rect(0, 0, buf.Width, buf.Height),
	}

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(buf.Width)*scale))
		newHeight := max(1, int(float64(buf.Height)*scale))
		img = imaging.Resize(img, newWidth, newHeight, imaging.NearestNeighbor)
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(out.Bytes()),
		MimeType:    "image/png",
	}, nil
}
