package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// Resampler crops a rectangle out of an image and scales it to w×h.
// The result's bounds start at (0,0).
type Resampler interface {
	Resample(img image.Image, r image.Rectangle, w, h int) image.Image
	Name() string
}

// ImagingResampler resamples with github.com/disintegration/imaging.
type ImagingResampler struct {
	Filter     imaging.ResampleFilter
	FilterName string
}

// Resample implements Resampler.
func (r ImagingResampler) Resample(img image.Image, rect image.Rectangle, w, h int) image.Image {
	return imaging.Resize(imaging.Crop(img, rect), w, h, r.Filter)
}

// Name implements Resampler.
func (r ImagingResampler) Name() string { return "imaging/" + r.FilterName }

// BildResampler resamples with github.com/anthonynsimon/bild.
type BildResampler struct {
	Filter     transform.ResampleFilter
	FilterName string
}

// Resample implements Resampler.
func (r BildResampler) Resample(img image.Image, rect image.Rectangle, w, h int) image.Image {
	cropped := transform.Crop(img, rect)
	b := cropped.Bounds()
	// Pix of a cropped RGBA starts at b.Min, so moving the origin to (0,0)
	// only needs a new Rect.
	rebased := &image.RGBA{Pix: cropped.Pix, Stride: cropped.Stride, Rect: image.Rect(0, 0, b.Dx(), b.Dy())}
	return transform.Resize(rebased, w, h, r.Filter)
}

// Name implements Resampler.
func (r BildResampler) Name() string { return "bild/" + r.FilterName }

// Default resampler settings. Linear matches the smoothing a browser applies
// when drawing a scaled image.
const (
	DefaultBackend = "imaging"
	DefaultFilter  = "linear"
)

// NewResampler returns the resampler for a backend ("imaging" or "bild") and
// filter ("nearest", "box", "linear", "catmullrom", "lanczos"). Empty
// strings select the defaults.
func NewResampler(backend, filter string) (Resampler, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	filter = strings.ToLower(strings.TrimSpace(filter))
	if backend == "" {
		backend = DefaultBackend
	}
	if filter == "" {
		filter = DefaultFilter
	}

	switch backend {
	case "imaging":
		f, ok := imagingFilters[filter]
		if !ok {
			return nil, fmt.Errorf("unknown resample filter %q", filter)
		}
		return ImagingResampler{Filter: f, FilterName: filter}, nil
	case "bild":
		f, ok := bildFilters[filter]
		if !ok {
			return nil, fmt.Errorf("unknown resample filter %q", filter)
		}
		return BildResampler{Filter: f, FilterName: filter}, nil
	default:
		return nil, fmt.Errorf("unknown resampler backend %q", backend)
	}
}

var imagingFilters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"catmullrom": imaging.CatmullRom,
	"lanczos":    imaging.Lanczos,
}

var bildFilters = map[string]transform.ResampleFilter{
	"nearest":    transform.NearestNeighbor,
	"box":        transform.Box,
	"linear":     transform.Linear,
	"catmullrom": transform.CatmullRom,
	"lanczos":    transform.Lanczos,
}
