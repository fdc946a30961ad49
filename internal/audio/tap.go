package audio

// Tap exposes the mono signal around a playback's playhead to the analyser.
type Tap struct {
	clip     *Clip
	playback Playback
}

// NewTap joins a clip with the playback that plays it.
func NewTap(clip *Clip, playback Playback) *Tap {
	return &Tap{clip: clip, playback: playback}
}

// Latest fills dst with the len(dst) samples ending at the playhead and
// returns how many came from the clip. A stopped playback yields silence.
func (t *Tap) Latest(dst []float64) int {
	if t.playback == nil || !t.playback.Playing() {
		clear(dst)
		return 0
	}
	end := t.clip.FrameAt(t.playback.Position())
	start := end - len(dst)
	n := 0
	for i := range dst {
		j := start + i
		if j < 0 {
			dst[i] = 0
			continue
		}
		dst[i] = t.clip.Mono[j]
		n++
	}
	return n
}
