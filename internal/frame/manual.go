package frame

import "time"

// Manual is a deterministic scheduler: frames happen only when Step is
// called. It also serves as the playback clock in headless export.
type Manual struct {
	q   queue
	now time.Duration
}

// NewManual returns a scheduler at time zero.
func NewManual() *Manual { return &Manual{} }

// Schedule implements Scheduler.
func (m *Manual) Schedule(cb Callback) Handle { return m.q.add(cb) }

// Cancel implements Scheduler. Unknown or spent handles are ignored.
func (m *Manual) Cancel(h Handle) { m.q.remove(h) }

// Now returns the time of the last step.
func (m *Manual) Now() time.Duration { return m.now }

// Pending returns how many callbacks wait for the next frame.
func (m *Manual) Pending() int { return m.q.len() }

// Step advances the clock by dt and runs the frame. It returns the number
// of callbacks fired.
func (m *Manual) Step(dt time.Duration) int {
	m.now += dt
	cbs := m.q.take()
	for _, cb := range cbs {
		cb(m.now)
	}
	return len(cbs)
}
