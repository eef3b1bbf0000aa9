// Package imaging supplies the image side of contrast computation: loading
// and caching background images, and rasterising rectangles of them into
// RGBA buffers.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y downward. Source rectangles are fractional; they
// are widened to whole pixels before cropping.
//
// # Rasterising
//
// Source implements contrast.Source. It behaves like drawing the image onto a
// 2D canvas without alpha: the requested rectangle is scaled onto an opaque
// black canvas the size of the target, and any part that falls outside the
// image stays black. Two resampling backends are available:
//   - "imaging": github.com/disintegration/imaging (default)
//   - "bild": github.com/anthonynsimon/bild
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Source is stateless; the Surface it
// draws on is owned by the caller.
//
// # Color Representation
//
// ColorReport gives a color as Hex ("#rrggbb"), RGB, HSL (via go-colorful)
// and the luminance proxy used by theme resolution.
package imaging
