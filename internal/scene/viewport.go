package scene

import "audio-sphere/internal/raster"

// Viewport pairs the camera with the framebuffer it renders into. Resize
// updates both before returning, so a frame never sees one without the other.
type Viewport struct {
	Camera *Camera
	FB     *raster.FrameBuffer

	width       int
	height      int
	supersample int
}

// NewViewport sizes the framebuffer to w×h times supersample.
func NewViewport(cam *Camera, w, h, supersample int) *Viewport {
	if supersample < 1 {
		supersample = 1
	}
	v := &Viewport{Camera: cam, FB: &raster.FrameBuffer{}, supersample: supersample}
	v.Resize(w, h)
	return v
}

// Resize applies new output dimensions. Non-positive sizes are ignored and
// reported as false.
func (v *Viewport) Resize(w, h int) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	v.width, v.height = w, h
	v.FB.Resize(w*v.supersample, h*v.supersample)
	v.Camera.SetAspect(float64(w) / float64(h))
	return true
}

// Size returns the output dimensions (before supersampling).
func (v *Viewport) Size() (int, int) { return v.width, v.height }

// Supersample returns the render scale factor.
func (v *Viewport) Supersample() int { return v.supersample }

// Release frees the framebuffer planes.
func (v *Viewport) Release() {
	v.FB.Release()
}
