package spectrum

// Tap supplies the most recent time-domain samples.
type Tap interface {
	Latest(dst []float64) int
}

// Sampler produces one Frame per animation tick from a connected Tap.
type Sampler struct {
	analyser *Analyser
	tap      Tap
	samples  []float64
	frame    Frame
}

// NewSampler wraps analyser; tap may be nil until Connect.
func NewSampler(analyser *Analyser, tap Tap) *Sampler {
	return &Sampler{
		analyser: analyser,
		tap:      tap,
		samples:  make([]float64, analyser.FFTSize()),
		frame:    make(Frame, analyser.BinCount()),
	}
}

// Connect attaches a tap and clears smoothing history.
func (s *Sampler) Connect(tap Tap) {
	s.tap = tap
	s.analyser.Reset()
}

// Disconnect detaches the tap; later samples are silent.
func (s *Sampler) Disconnect() {
	s.tap = nil
	s.analyser.Reset()
}

// Connected reports whether a tap is attached.
func (s *Sampler) Connected() bool { return s.tap != nil }

// Sample returns the current frame. The slice is reused: it is valid only
// until the next call. Call at most once per tick.
func (s *Sampler) Sample() Frame {
	if s.tap == nil {
		clear(s.frame)
		return s.frame
	}
	s.tap.Latest(s.samples)
	s.frame = s.analyser.ByteFrequencyData(s.samples, s.frame)
	return s.frame
}
