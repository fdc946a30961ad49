package raster

import (
	"math"

	"audio-sphere/internal/mathutil"
)

// DirectionalLight is a white-ish light at infinity.
type DirectionalLight struct {
	Dir       mathutil.Vec3 // unit vector pointing toward the light
	Color     mathutil.Vec3 // linear RGB
	Intensity float64
}

// NewDirectionalLight aims a light from position toward the origin.
func NewDirectionalLight(position, color mathutil.Vec3, intensity float64) DirectionalLight {
	return DirectionalLight{
		Dir:       position.Normalize(),
		Color:     color,
		Intensity: intensity,
	}
}

// Irradiance returns the Lambertian contribution for a unit normal.
func (l DirectionalLight) Irradiance(normal mathutil.Vec3) mathutil.Vec3 {
	ndl := normal.Dot(l.Dir)
	if ndl <= 0 {
		return mathutil.Vec3{}
	}
	return l.Color.Scale(ndl * l.Intensity)
}

// Precomputed sRGB lookup tables.
var (
	srgbToLinear [256]float64
	linearToSRGB [4096]uint8
)

func init() {
	for i := 0; i < 256; i++ {
		c := float64(i) / 255.0
		srgbToLinear[i] = DecodeSRGB(c)
	}
	for i := range linearToSRGB {
		c := float64(i) / float64(len(linearToSRGB)-1)
		linearToSRGB[i] = clamp255(encodeSRGB(c) * 255)
	}
}

// DecodeSRGB converts one sRGB channel in [0, 1] to linear.
func DecodeSRGB(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func encodeSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

// SRGBToLinear converts an 8-bit sRGB triple to linear RGB.
func SRGBToLinear(r, g, b uint8) mathutil.Vec3 {
	return mathutil.Vec3{srgbToLinear[r], srgbToLinear[g], srgbToLinear[b]}
}

// EncodeSRGB quantizes a linear channel value in [0, 1] to 8-bit sRGB.
func EncodeSRGB(c float64) uint8 {
	if c <= 0 {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return linearToSRGB[int(c*float64(len(linearToSRGB)-1)+0.5)]
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
