package contrast

import "image"

// Surface is a reusable drawing canvas. The engine owns one and hands it to
// Source.Raster so repeated recomputations do not reallocate pixel memory.
//
// A Surface is not safe for concurrent use; the engine only touches it while
// holding its recomputation lock.
type Surface struct {
	backing []uint8
}

// NewSurface returns an empty surface. Memory is allocated on first use.
func NewSurface() *Surface {
	return &Surface{}
}

// Canvas returns an opaque black w×h RGBA canvas backed by the surface's
// memory, growing it if needed. The canvas is only valid until the next call.
// A nil Surface returns a freshly allocated canvas.
func (s *Surface) Canvas(w, h int) *image.RGBA {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	n := w * h * 4

	var pix []uint8
	if s == nil {
		pix = make([]uint8, n)
	} else {
		if cap(s.backing) < n {
			s.backing = make([]uint8, n)
		}
		pix = s.backing[:n]
	}

	for i := 0; i < n; i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = 0, 0, 0, 0xff
	}
	return &image.RGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

// Cap reports the number of bytes currently held.
func (s *Surface) Cap() int {
	if s == nil {
		return 0
	}
	return cap(s.backing)
}

// Reset releases the surface's memory.
func (s *Surface) Reset() {
	if s != nil {
		s.backing = nil
	}
}
