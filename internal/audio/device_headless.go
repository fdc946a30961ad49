//go:build headless

package audio

// Device is unavailable in headless builds.
type Device struct{}

// NewDevice always fails in headless builds.
func NewDevice(sampleRate int) (*Device, error) {
	return nil, ErrNoDevice
}

// SampleRate returns 0.
func (d *Device) SampleRate() int { return 0 }

// Open always fails in headless builds.
func (d *Device) Open(clip *Clip) (Playback, error) {
	return nil, ErrNoDevice
}
