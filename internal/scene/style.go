package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"audio-sphere/internal/mathutil"
	"audio-sphere/internal/raster"
)

// ErrUnknownStyle is returned for a material kind with no registered builder.
var ErrUnknownStyle = errors.New("scene: unknown style")

// MaterialKind names a shading strategy.
type MaterialKind string

const (
	Gradient MaterialKind = "gradient"
	Emissive MaterialKind = "emissive"
	Lambert  MaterialKind = "lambert"
)

// DefaultRadius is the reference sphere radius shared by every preset.
const DefaultRadius = 32.0

// LightPosition is where the directional light shines from.
var LightPosition = mathutil.Vec3{0, 50, 100}

// Style selects geometry density and shading for a session.
type Style struct {
	Material       MaterialKind
	Detail         int
	Radius         float64
	Wireframe      bool
	Color          string  // base color, "#rrggbb"
	LightIntensity float64 // 0 means the preset value
}

var presets = map[MaterialKind]Style{
	Gradient: {Material: Gradient, Detail: 8, Radius: DefaultRadius, Wireframe: true, Color: "#ffffff", LightIntensity: 1},
	Emissive: {Material: Emissive, Detail: 4, Radius: DefaultRadius, Wireframe: true, Color: "#ffffff", LightIntensity: 1},
	Lambert:  {Material: Lambert, Detail: 3, Radius: DefaultRadius, Wireframe: true, Color: "#ff0000", LightIntensity: 0.8},
}

// Kinds lists the registered material kinds in a stable order.
func Kinds() []MaterialKind {
	return []MaterialKind{Gradient, Emissive, Lambert}
}

// Preset returns the default style for kind.
func Preset(kind MaterialKind) (Style, error) {
	s, ok := presets[kind]
	if !ok {
		return Style{}, fmt.Errorf("%w: %q", ErrUnknownStyle, kind)
	}
	return s, nil
}

// Resolve fills zero fields of s from its kind's preset.
func (s Style) Resolve() (Style, error) {
	p, err := Preset(s.Material)
	if err != nil {
		return Style{}, err
	}
	if s.Detail <= 0 {
		s.Detail = p.Detail
	}
	if s.Radius <= 0 {
		s.Radius = p.Radius
	}
	if s.Color == "" {
		s.Color = p.Color
	}
	if s.LightIntensity <= 0 {
		s.LightIntensity = p.LightIntensity
	}
	return s, nil
}

// Light returns the scene light for this style.
func (s Style) Light() raster.DirectionalLight {
	return raster.NewDirectionalLight(LightPosition, mathutil.Vec3{1, 1, 1}, s.LightIntensity)
}

// Material shades vertices. Advance is called once per frame before Shade.
type Material interface {
	Advance(now time.Duration)
	// Shade returns linear RGB for a vertex given its local position and
	// world-space normal.
	Shade(local, normal mathutil.Vec3) mathutil.Vec3
}

type builder func(s Style, light raster.DirectionalLight, rng *rand.Rand) (Material, error)

var builders = map[MaterialKind]builder{
	Gradient: func(s Style, _ raster.DirectionalLight, rng *rand.Rand) (Material, error) {
		return &gradientMaterial{palette: NewPalette(rng, PaletteInterval), radius: s.Radius}, nil
	},
	Emissive: func(s Style, light raster.DirectionalLight, _ *rand.Rand) (Material, error) {
		base, err := ParseColor(s.Color)
		if err != nil {
			return nil, err
		}
		return &emissiveMaterial{light: light, base: base}, nil
	},
	Lambert: func(s Style, light raster.DirectionalLight, _ *rand.Rand) (Material, error) {
		base, err := ParseColor(s.Color)
		if err != nil {
			return nil, err
		}
		return &lambertMaterial{light: light, base: base}, nil
	},
}

// NewMaterial builds the material for s. rng drives any random palette.
func NewMaterial(s Style, light raster.DirectionalLight, rng *rand.Rand) (Material, error) {
	b, ok := builders[s.Material]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, s.Material)
	}
	return b(s, light, rng)
}

// ParseColor reads "#rrggbb" into linear RGB.
func ParseColor(hex string) (mathutil.Vec3, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return mathutil.Vec3{}, fmt.Errorf("scene: parse color %q: want #rrggbb", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return mathutil.Vec3{}, fmt.Errorf("scene: parse color %q: %w", hex, err)
	}
	return raster.SRGBToLinear(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// HSL converts hue, saturation and lightness in [0, 1] to linear RGB.
func HSL(h, s, l float64) mathutil.Vec3 {
	h -= math.Floor(h)
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return mathutil.Vec3{
		raster.DecodeSRGB(hueChannel(p, q, h+1.0/3)),
		raster.DecodeSRGB(hueChannel(p, q, h)),
		raster.DecodeSRGB(hueChannel(p, q, h-1.0/3)),
	}
}

func hueChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*6*(2.0/3-t)
	}
	return p
}

func millis(now time.Duration) float64 {
	return float64(now) / float64(time.Millisecond)
}

// gradientMaterial mixes the palette pair and darkens toward the bottom.
type gradientMaterial struct {
	palette *Palette
	radius  float64
	mixed   mathutil.Vec3
}

func (m *gradientMaterial) Advance(now time.Duration) {
	m.palette.Advance(now)
	mix := (math.Sin(millis(now)*0.001) + 1) / 2
	m.mixed = m.palette.A.Lerp(m.palette.B, mix)
}

func (m *gradientMaterial) Shade(local, _ mathutil.Vec3) mathutil.Vec3 {
	g := (local[1] + m.radius) / (2 * m.radius)
	g = math.Max(0, math.Min(1, g))
	return m.mixed.Scale(g)
}

// EmissiveIntensity scales the cycling hue.
const EmissiveIntensity = 1.5

// emissiveMaterial is a lit diffuse surface with a hue-cycling glow.
type emissiveMaterial struct {
	light    raster.DirectionalLight
	base     mathutil.Vec3
	emission mathutil.Vec3
}

func (m *emissiveMaterial) Advance(now time.Duration) {
	hue := math.Mod(millis(now)*0.02, 360) / 360
	m.emission = HSL(hue, 1, 0.5).Scale(EmissiveIntensity)
}

func (m *emissiveMaterial) Shade(_, normal mathutil.Vec3) mathutil.Vec3 {
	return m.base.Mul(m.light.Irradiance(normal)).Add(m.emission)
}

type lambertMaterial struct {
	light raster.DirectionalLight
	base  mathutil.Vec3
}

func (m *lambertMaterial) Advance(time.Duration) {}

func (m *lambertMaterial) Shade(_, normal mathutil.Vec3) mathutil.Vec3 {
	return m.base.Mul(m.light.Irradiance(normal))
}
