package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"audio-sphere/internal/frame"
)

func TestStepFramesMatchesManifestTimes(t *testing.T) {
	sched := frame.NewManual()
	sched.Step(2 * time.Second) // a previous session already ran

	var seen []time.Duration
	var cb frame.Callback
	cb = func(now time.Duration) {
		seen = append(seen, now)
		sched.Schedule(cb)
	}
	sched.Schedule(cb)

	dt := time.Second / 25
	stepFrames(context.Background(), sched, 3, dt)
	start := 2 * time.Second
	assert.Equal(t, []time.Duration{start, start + dt, start + 2*dt}, seen)
}

func TestStepFramesStopsOnCancel(t *testing.T) {
	sched := frame.NewManual()
	fired := 0
	sched.Schedule(func(time.Duration) { fired++ })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stepFrames(ctx, sched, 10, time.Millisecond)
	assert.Zero(t, fired)
}

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 30, frameCount(time.Second, 0, 30))
	assert.Equal(t, 15, frameCount(time.Second, 0.5, 30))
	assert.Equal(t, 31, frameCount(1010*time.Millisecond, 0, 30))
	assert.Equal(t, 30, frameCount(time.Second, 5, 30))
}
