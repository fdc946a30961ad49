package raster

import "math"

// DrawLine draws a one-pixel, depth-tested segment with interpolated color.
// Equal depth passes, so an edge shared by two faces is drawn by both.
func DrawLine(fb *FrameBuffer, a, b Vertex) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	inv := 1.0 / float64(steps)

	for i := 0; i <= steps; i++ {
		t := float64(i) * inv
		px := int(math.Floor(a.X + dx*t))
		py := int(math.Floor(a.Y + dy*t))
		if px < 0 || py < 0 || px >= fb.Width || py >= fb.Height {
			continue
		}
		zIdx := py*fb.Width + px
		z := a.Z + (b.Z-a.Z)*t
		if z < fb.ZBuf[zIdx]-1e-9 {
			continue
		}
		fb.ZBuf[zIdx] = z

		pxIdx := zIdx * 4
		fb.Color[pxIdx] = EncodeSRGB(a.Color[0] + (b.Color[0]-a.Color[0])*t)
		fb.Color[pxIdx+1] = EncodeSRGB(a.Color[1] + (b.Color[1]-a.Color[1])*t)
		fb.Color[pxIdx+2] = EncodeSRGB(a.Color[2] + (b.Color[2]-a.Color[2])*t)
		fb.Color[pxIdx+3] = 255
	}
}
