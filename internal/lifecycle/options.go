package lifecycle

import (
	"audio-sphere/internal/config"
	"audio-sphere/internal/scene"
	"audio-sphere/internal/spectrum"
)

// OptionsFromConfig maps resolved settings to session options.
func OptionsFromConfig(cfg config.Config) Options {
	smoothing := spectrum.DefaultSmoothing
	if cfg.Smoothing != nil {
		smoothing = *cfg.Smoothing
	}
	wire := true
	if cfg.Wireframe != nil {
		wire = *cfg.Wireframe
	}
	return Options{
		Style: scene.Style{
			Material:  scene.MaterialKind(cfg.Style),
			Detail:    cfg.Detail,
			Radius:    cfg.Radius,
			Wireframe: wire,
			Color:     cfg.Color,
		},
		Analysis: spectrum.Options{
			FFTSize:   cfg.FFTSize,
			Smoothing: smoothing,
			MinDB:     cfg.MinDB,
			MaxDB:     cfg.MaxDB,
		},
		FOV:         cfg.FOV,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Supersample: cfg.Supersample,
		Seed:        cfg.Seed,
	}
}
