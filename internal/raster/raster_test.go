package raster

import (
	"math"
	"testing"

	"audio-sphere/internal/mathutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixel(fb *FrameBuffer, x, y int) [4]uint8 {
	i := (y*fb.Width + x) * 4
	return [4]uint8{fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]}
}

func TestFrameBufferResize(t *testing.T) {
	fb := NewFrameBuffer(4, 3)
	assert.Len(t, fb.Color, 48)
	assert.Len(t, fb.ZBuf, 12)
	assert.True(t, math.IsInf(fb.ZBuf[5], -1))

	fb.Color[0] = 9
	fb.Resize(2, 2)
	assert.Equal(t, 2, fb.Width)
	assert.Equal(t, 2, fb.Height)
	assert.Len(t, fb.Color, 16)
	assert.Equal(t, uint8(0), fb.Color[0])

	fb.Resize(10, 10)
	assert.Len(t, fb.ZBuf, 100)

	img := fb.Image()
	assert.Equal(t, 10, img.Bounds().Dx())

	fb.Release()
	assert.Zero(t, fb.Width)
	assert.Nil(t, fb.Color)
}

func TestRasterizeTriangleFillsInterior(t *testing.T) {
	fb := NewFrameBuffer(20, 20)
	white := mathutil.Vec3{1, 1, 1}
	RasterizeTriangle(fb,
		Vertex{X: 1, Y: 1, Z: 0, Color: white},
		Vertex{X: 19, Y: 1, Z: 0, Color: white},
		Vertex{X: 1, Y: 19, Z: 0, Color: white},
	)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, pixel(fb, 4, 4))
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, pixel(fb, 18, 18))
}

func TestRasterizeTriangleDepth(t *testing.T) {
	fb := NewFrameBuffer(10, 10)
	red := mathutil.Vec3{1, 0, 0}
	blue := mathutil.Vec3{0, 0, 1}
	near := [3]Vertex{{X: 0, Y: 0, Z: 2}, {X: 10, Y: 0, Z: 2}, {X: 0, Y: 10, Z: 2}}
	far := [3]Vertex{{X: 0, Y: 0, Z: 1}, {X: 10, Y: 0, Z: 1}, {X: 0, Y: 10, Z: 1}}
	for i := range near {
		near[i].Color = red
		far[i].Color = blue
	}

	RasterizeTriangle(fb, near[0], near[1], near[2])
	RasterizeTriangle(fb, far[2], far[1], far[0]) // reversed winding, behind
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixel(fb, 2, 2))
}

func TestRasterizeDegenerateIsNoop(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	v := Vertex{X: 3, Y: 3, Color: mathutil.Vec3{1, 1, 1}}
	RasterizeTriangle(fb, v, v, v)
	assert.Equal(t, make([]uint8, len(fb.Color)), fb.Color)
}

func TestDrawLine(t *testing.T) {
	fb := NewFrameBuffer(10, 10)
	c := mathutil.Vec3{0, 1, 0}
	DrawLine(fb, Vertex{X: 0.5, Y: 5.5, Color: c}, Vertex{X: 9.5, Y: 5.5, Color: c})
	for x := 0; x < 10; x++ {
		assert.Equal(t, [4]uint8{0, 255, 0, 255}, pixel(fb, x, 5))
	}
	assert.Equal(t, uint8(0), pixel(fb, 5, 4)[3])

	// Off-screen segments are clipped per pixel.
	require.NotPanics(t, func() {
		DrawLine(fb, Vertex{X: -50, Y: -50}, Vertex{X: 60, Y: 60})
	})
}

func TestSRGBRoundTrip(t *testing.T) {
	assert.Equal(t, uint8(0), EncodeSRGB(-1))
	assert.Equal(t, uint8(255), EncodeSRGB(2))
	for _, v := range []uint8{0, 17, 128, 200, 255} {
		lin := SRGBToLinear(v, v, v)
		assert.InDelta(t, float64(v), float64(EncodeSRGB(lin[0])), 1)
	}
}

func TestDirectionalLight(t *testing.T) {
	l := NewDirectionalLight(mathutil.Vec3{0, 50, 100}, mathutil.Vec3{1, 1, 1}, 0.8)
	assert.InDelta(t, 1.0, l.Dir.Len(), 1e-12)
	assert.InDelta(t, 0.8, l.Irradiance(l.Dir)[0], 1e-12)
	assert.Equal(t, mathutil.Vec3{}, l.Irradiance(l.Dir.Scale(-1)))
}
