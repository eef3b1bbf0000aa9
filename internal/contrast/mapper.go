package contrast

import (
	"fmt"
	"strings"
)

// Rect is an axis-aligned rectangle. Its coordinate space (page,
// container-local or image pixels) depends on where it came from.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rect) mul(f float64) Rect {
	return Rect{X: r.X * f, Y: r.Y * f, Width: r.Width * f, Height: r.Height * f}
}

func (r Rect) div(f float64) Rect {
	return Rect{X: r.X / f, Y: r.Y / f, Width: r.Width / f, Height: r.Height / f}
}

// FitMode mirrors the CSS background-size policies the mapper understands.
type FitMode int

const (
	// FitCover scales the image until it covers the container, cropping overflow.
	FitCover FitMode = iota
	// FitContain scales the image to fit inside the container.
	FitContain
)

func (f FitMode) String() string {
	switch f {
	case FitCover:
		return "cover"
	case FitContain:
		return "contain"
	default:
		return fmt.Sprintf("FitMode(%d)", int(f))
	}
}

// ParseFitMode parses "cover" or "contain". An empty string yields FitCover.
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cover":
		return FitCover, nil
	case "contain":
		return FitContain, nil
	default:
		return 0, ConfigurationError("fit", fmt.Sprintf("unknown fit mode %q", s))
	}
}

// ToContainerLocal translates a page-space target rectangle into the
// coordinate space of container.
func ToContainerLocal(target, container Rect) Rect {
	return Rect{
		X:      target.X - container.X,
		Y:      target.Y - container.Y,
		Width:  target.Width,
		Height: target.Height,
	}
}

// CoverScale returns the factor by which the displayed image is larger than
// its natural pixels under background-size: cover.
func CoverScale(container, display Size) (float64, error) {
	if container.Width <= 0 || container.Height <= 0 {
		return 0, ConfigurationError("map", "container has a zero dimension")
	}
	if display.Width <= 0 || display.Height <= 0 {
		return 0, ConfigurationError("map", "image has a zero dimension")
	}

	imageAspect := display.Width / display.Height
	containerAspect := container.Width / container.Height
	if imageAspect >= containerAspect {
		return container.Height / display.Height, nil
	}
	return container.Width / display.Width, nil
}

// MapToSource maps a container-local target rectangle to image pixel
// coordinates.
//
// Cover divides the target by CoverScale. Contain multiplies it by
// natural.Width / container.Width, which is only exact when the rendered
// image width equals the container width; letterbox offsets are not
// accounted for and callers depend on that.
func MapToSource(fit FitMode, target Rect, container, natural, display Size) (Rect, error) {
	switch fit {
	case FitCover:
		scale, err := CoverScale(container, display)
		if err != nil {
			return Rect{}, err
		}
		return target.div(scale), nil

	case FitContain:
		if container.Width <= 0 || container.Height <= 0 {
			return Rect{}, ConfigurationError("map", "container has a zero dimension")
		}
		if natural.Width <= 0 || natural.Height <= 0 {
			return Rect{}, ConfigurationError("map", "image has a zero dimension")
		}
		return target.mul(natural.Width / container.Width), nil

	default:
		return Rect{}, ConfigurationError("map", fmt.Sprintf("unsupported fit mode %v", fit))
	}
}
