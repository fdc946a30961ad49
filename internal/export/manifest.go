package export

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one frame in a session manifest.
type ManifestEntry struct {
	Index  int     `json:"index"`
	TimeMs float64 `json:"time_ms"`
	Image  string  `json:"image"`
	Error  string  `json:"error,omitempty"`
}

// Manifest describes one exported session.
type Manifest struct {
	Source string          `json:"source"`
	Format string          `json:"format"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	FPS    int             `json:"fps"`
	Frames []ManifestEntry `json:"frames"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(data, &m)
	return m, err
}
