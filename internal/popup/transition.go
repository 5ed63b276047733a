package popup

import (
	"sync"
	"time"
)

// Transition drives a popup's open and close animations.
// Each call must invoke done exactly once when the animation finishes.
type Transition interface {
	In(done func())
	Out(done func())
}

// Once wraps fn so that it runs at most once regardless of how many times
// the returned function is called.
func Once(fn func()) func() {
	var once sync.Once
	return func() {
		once.Do(fn)
	}
}

// Instant is a transition that completes synchronously.
type Instant struct{}

// In completes immediately.
func (Instant) In(done func()) { done() }

// Out completes immediately.
func (Instant) Out(done func()) { done() }

// Manual is a transition completed explicitly by the caller via Finish.
// Scripted scenarios use it to control exactly when callbacks fire.
type Manual struct {
	pending func()
}

// In records done until Finish is called.
func (m *Manual) In(done func()) { m.pending = done }

// Out records done until Finish is called.
func (m *Manual) Out(done func()) { m.pending = done }

// Pending reports whether a transition is waiting to be finished.
func (m *Manual) Pending() bool { return m.pending != nil }

// Finish completes the running transition. Returns false if none was running.
func (m *Manual) Finish() bool {
	if m.pending == nil {
		return false
	}
	done := m.pending
	m.pending = nil
	done()
	return true
}

// Frames schedules timed transitions against a frame clock advanced by the
// host's update loop. Completions fire from Advance, on the caller's
// goroutine, in deadline order (ties in scheduling order).
type Frames struct {
	clock   time.Duration
	seq     uint64
	pending []scheduled
}

type scheduled struct {
	at   time.Duration
	seq  uint64
	done func()
}

// NewFrames creates an empty frame scheduler.
func NewFrames() *Frames {
	return &Frames{}
}

// Transition returns a Transition whose open and close animations take the
// given durations on this scheduler's clock.
func (f *Frames) Transition(in, out time.Duration) Transition {
	return &frameTransition{frames: f, in: in, out: out}
}

// Schedule runs done once the clock has advanced by d.
func (f *Frames) Schedule(d time.Duration, done func()) {
	f.seq++
	f.pending = append(f.pending, scheduled{at: f.clock + d, seq: f.seq, done: done})
}

// Advance moves the clock forward by dt and fires every due completion.
// Completions scheduled while firing are honoured in the same call when due.
// Returns the number of completions fired.
func (f *Frames) Advance(dt time.Duration) int {
	f.clock += dt
	fired := 0
	for {
		idx := -1
		for i, s := range f.pending {
			if s.at > f.clock {
				continue
			}
			if idx < 0 || s.at < f.pending[idx].at || (s.at == f.pending[idx].at && s.seq < f.pending[idx].seq) {
				idx = i
			}
		}
		if idx < 0 {
			return fired
		}
		next := f.pending[idx]
		f.pending = append(f.pending[:idx], f.pending[idx+1:]...)
		next.done()
		fired++
	}
}

// Pending returns the number of transitions still running.
func (f *Frames) Pending() int {
	return len(f.pending)
}

// Elapsed returns the scheduler's clock.
func (f *Frames) Elapsed() time.Duration {
	return f.clock
}

type frameTransition struct {
	frames *Frames
	in     time.Duration
	out    time.Duration
}

func (t *frameTransition) In(done func())  { t.frames.Schedule(t.in, done) }
func (t *frameTransition) Out(done func()) { t.frames.Schedule(t.out, done) }
