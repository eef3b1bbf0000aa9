package imaging

import (
	"context"
	"image"
	"image/draw"
	"math"

	"github.com/ironsheep/contrast-mcp/internal/contrast"
)

// Source adapts a loaded Image to contrast.Source. It plays the part of a
// 2D canvas: the requested image rectangle is drawn, scaled, onto an opaque
// black canvas the size of the target and the canvas pixels are returned.
// Parts of the rectangle outside the image stay black.
type Source struct {
	img       *Image
	resampler Resampler
}

// NewSource wraps img. A nil resampler selects the default.
func NewSource(img *Image, resampler Resampler) *Source {
	if resampler == nil {
		resampler, _ = NewResampler("", "")
	}
	return &Source{img: img, resampler: resampler}
}

// NaturalSize implements contrast.Source.
func (s *Source) NaturalSize() contrast.Size {
	b := s.img.Bounds()
	return contrast.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// DisplaySize implements contrast.Source. A detached image reports its
// natural size.
func (s *Source) DisplaySize() contrast.Size {
	return s.NaturalSize()
}

// Raster implements contrast.Source.
func (s *Source) Raster(src contrast.Rect, width, height int, surface *contrast.Surface) (*contrast.RasterBuffer, error) {
	if s.img.Tainted {
		return nil, contrast.AccessError("raster",
			"image "+s.img.Ref+" is cross-origin and was not served with Access-Control-Allow-Origin")
	}

	if err := contrast.CheckRasterSize(float64(width), float64(height)); err != nil {
		return nil, err
	}

	canvas := surface.Canvas(width, height)
	if width > 0 && height > 0 && !src.Empty() {
		s.draw(canvas, src)
	}
	return contrast.NewRasterBuffer(width, height, canvas.Pix)
}

func (s *Source) draw(canvas *image.RGBA, src contrast.Rect) {
	bounds := s.img.Bounds()
	sr := image.Rect(
		int(math.Floor(src.X)), int(math.Floor(src.Y)),
		int(math.Ceil(src.X+src.Width)), int(math.Ceil(src.Y+src.Height)),
	).Add(bounds.Min)

	clip := sr.Intersect(bounds)
	if clip.Empty() {
		return
	}

	cw, ch := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	sx := float64(cw) / float64(sr.Dx())
	sy := float64(ch) / float64(sr.Dy())
	dst := image.Rect(
		int(math.Round(float64(clip.Min.X-sr.Min.X)*sx)),
		int(math.Round(float64(clip.Min.Y-sr.Min.Y)*sy)),
		int(math.Round(float64(clip.Max.X-sr.Min.X)*sx)),
		int(math.Round(float64(clip.Max.Y-sr.Min.Y)*sy)),
	).Intersect(canvas.Bounds())
	if dst.Empty() {
		return
	}

	patch := s.resampler.Resample(s.img.Image, clip, dst.Dx(), dst.Dy())
	draw.Draw(canvas, dst, patch, patch.Bounds().Min, draw.Over)
}

// Loader loads one image through an ImageCache. It implements
// contrast.SourceLoader.
type Loader struct {
	Cache     *ImageCache
	Ref       string
	Resampler Resampler
}

// Load implements contrast.SourceLoader.
func (l *Loader) Load(ctx context.Context) (contrast.Source, error) {
	img, err := l.Cache.Load(ctx, l.Ref)
	if err != nil {
		return nil, err
	}
	return NewSource(img, l.Resampler), nil
}
