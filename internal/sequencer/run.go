package sequencer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// run is the handle for one in-flight sequence. It owns the periodic tick
// timer and the one-shot completion timer; cancel stops both.
type run struct {
	id      string
	started time.Time

	mu        sync.Mutex
	tick      Timer
	done      Timer
	cancelled bool
}

func newRun(now time.Time) *run {
	return &run{id: uuid.NewString(), started: now}
}

// setTick replaces the tick timer. It returns false, and stops t, if the run
// has already been cancelled.
func (r *run) setTick(t Timer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		t.Stop()
		return false
	}
	r.tick = t
	return true
}

func (r *run) setDone(t Timer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		t.Stop()
		return false
	}
	r.done = t
	return true
}

// stopTicking stops only the periodic timer.
func (r *run) stopTicking() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tick != nil {
		r.tick.Stop()
		r.tick = nil
	}
}

// cancel stops both timers. It reports whether this call did the cancelling.
func (r *run) cancel() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return false
	}
	r.cancelled = true
	if r.tick != nil {
		r.tick.Stop()
		r.tick = nil
	}
	if r.done != nil {
		r.done.Stop()
		r.done = nil
	}
	return true
}

func (r *run) isCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}
