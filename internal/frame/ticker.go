package frame

import (
	"context"
	"sync"
	"time"
)

// Ticker is a real-time host: it fires frames at a fixed interval and runs
// posted tasks, all on the goroutine that called Run.
type Ticker struct {
	interval time.Duration
	start    time.Time

	mu    sync.Mutex
	q     queue
	tasks chan func()
}

// NewTicker returns a ticker firing every interval (60 Hz when <= 0).
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Ticker{
		interval: interval,
		start:    time.Now(),
		tasks:    make(chan func(), 64),
	}
}

// Schedule implements Scheduler.
func (t *Ticker) Schedule(cb Callback) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.q.add(cb)
}

// Cancel implements Scheduler.
func (t *Ticker) Cancel(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.q.remove(h)
}

// Now returns the time since the ticker was created.
func (t *Ticker) Now() time.Duration { return time.Since(t.start) }

// Post queues fn to run on the Run goroutine between frames. It may be
// called from any goroutine, before or during Run.
func (t *Ticker) Post(fn func()) {
	t.tasks <- fn
}

// Run delivers frames and tasks until ctx is done.
func (t *Ticker) Run(ctx context.Context) error {
	tick := time.NewTicker(t.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-t.tasks:
			fn()
		case <-tick.C:
			t.mu.Lock()
			cbs := t.q.take()
			t.mu.Unlock()
			now := t.Now()
			for _, cb := range cbs {
				cb(now)
			}
		}
	}
}
