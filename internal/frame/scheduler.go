// Package frame abstracts the host's "run this before the next frame"
// primitive so the render loop does not depend on a particular runtime.
package frame

import "time"

// Callback receives the host time of the frame.
type Callback func(now time.Duration)

// Handle identifies a scheduled callback. The zero Handle is never issued.
type Handle uint64

// Scheduler runs each scheduled callback once, on the next frame.
type Scheduler interface {
	Schedule(cb Callback) Handle
	Cancel(h Handle)
}

// queue is the pending-callback bookkeeping shared by the schedulers.
type queue struct {
	next    Handle
	pending map[Handle]Callback
	order   []Handle
}

func (q *queue) add(cb Callback) Handle {
	if q.pending == nil {
		q.pending = make(map[Handle]Callback)
	}
	q.next++
	q.pending[q.next] = cb
	q.order = append(q.order, q.next)
	return q.next
}

func (q *queue) remove(h Handle) {
	delete(q.pending, h)
}

// take removes and returns every callback queued so far, in order.
// Callbacks scheduled while these run wait for the following frame.
func (q *queue) take() []Callback {
	if len(q.order) == 0 {
		return nil
	}
	cbs := make([]Callback, 0, len(q.order))
	for _, h := range q.order {
		if cb, ok := q.pending[h]; ok {
			cbs = append(cbs, cb)
			delete(q.pending, h)
		}
	}
	q.order = q.order[:0]
	return cbs
}

func (q *queue) len() int { return len(q.pending) }
