package lifecycle

import "time"

// State is the manager's lifecycle phase.
type State int

const (
	Idle State = iota
	Initializing
	Running
	TearingDown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case TearingDown:
		return "tearing-down"
	}
	return "unknown"
}

// PlaybackState describes the live session's playhead.
type PlaybackState int

const (
	PlaybackIdle PlaybackState = iota
	Playing
	Paused
)

func (s PlaybackState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "idle"
}

// RecordingState tracks the external capture collaborator.
type RecordingState int

const (
	RecordingIdle RecordingState = iota
	Capturing
)

func (s RecordingState) String() string {
	if s == Capturing {
		return "capturing"
	}
	return "idle"
}

// Status is a snapshot of the session state.
type Status struct {
	Source    string
	State     State
	Playback  PlaybackState
	Recording RecordingState
	Position  time.Duration
	Duration  time.Duration
	Frames    uint64
	Bass      float64
	Treble    float64
}
