package raster

import (
	"image"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, larger is nearer
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Resize(w, h)
	return fb
}

// Resize reallocates both planes when the dimensions change and clears them.
func (fb *FrameBuffer) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	n := w * h
	if cap(fb.ZBuf) < n {
		fb.ZBuf = make([]float64, n)
		fb.Color = make([]uint8, n*4)
	}
	fb.Width, fb.Height = w, h
	fb.ZBuf = fb.ZBuf[:n]
	fb.Color = fb.Color[:n*4]
	fb.Clear(0, 0, 0, 0)
}

// Clear fills the color plane and resets depth to -inf.
func (fb *FrameBuffer) Clear(r, g, b, a uint8) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = r
		fb.Color[i+1] = g
		fb.Color[i+2] = b
		fb.Color[i+3] = a
	}
	inf := math.Inf(-1)
	for i := range fb.ZBuf {
		fb.ZBuf[i] = inf
	}
}

// Image copies the color plane into a new NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

// Release drops both planes.
func (fb *FrameBuffer) Release() {
	fb.Width, fb.Height = 0, 0
	fb.Color, fb.ZBuf = nil, nil
}
