package sim

import (
	"math"
	"sync"
	"sync/atomic"
)

const (
	// MaxTimeScale bounds how far ahead of real time the simulation may run.
	MaxTimeScale = 500.0

	ScaleStepFine   = 0.5
	ScaleStepCoarse = 5.0
	ScaleStepHuge   = 50.0
)

// TimeScale is the shared real-time multiplier. The driver loads it once per
// iteration while input handling writes it at any time; values are clamped to
// [0, MaxTimeScale] so the simulation never runs backwards.
type TimeScale struct {
	bits atomic.Uint64

	mu     sync.Mutex
	paused bool
	saved  float64
}

// NewTimeScale returns a TimeScale initialised to v (clamped).
func NewTimeScale(v float64) *TimeScale {
	ts := &TimeScale{}
	ts.Set(v)
	return ts
}

func (ts *TimeScale) Load() float64 {
	return math.Float64frombits(ts.bits.Load())
}

// Set stores v clamped to [0, MaxTimeScale]. NaN is ignored. Returns the
// value actually stored.
func (ts *TimeScale) Set(v float64) float64 {
	if math.IsNaN(v) {
		return ts.Load()
	}
	v = clampScale(v)
	ts.bits.Store(math.Float64bits(v))
	return v
}

// Adjust adds delta to the current value, clamped. Returns the new value.
func (ts *TimeScale) Adjust(delta float64) float64 {
	if math.IsNaN(delta) {
		return ts.Load()
	}
	for {
		old := ts.bits.Load()
		v := clampScale(math.Float64frombits(old) + delta)
		if ts.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return v
		}
	}
}

// Pause sets the scale to zero, remembering the previous value for Resume.
func (ts *TimeScale) Pause() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.pause()
}

// Resume restores the value saved by Pause. A scale set while paused wins.
func (ts *TimeScale) Resume() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.resume()
}

// Toggle pauses a running scale or resumes a paused one.
func (ts *TimeScale) Toggle() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.paused {
		ts.resume()
	} else {
		ts.pause()
	}
}

// pause and resume require ts.mu.
func (ts *TimeScale) pause() {
	if ts.paused {
		return
	}
	ts.saved = ts.Load()
	ts.paused = true
	ts.bits.Store(math.Float64bits(0))
}

func (ts *TimeScale) resume() {
	if !ts.paused {
		return
	}
	ts.paused = false
	if ts.Load() == 0 {
		ts.bits.Store(math.Float64bits(ts.saved))
	}
}

func (ts *TimeScale) Paused() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.paused
}

func clampScale(v float64) float64 {
	return math.Max(0, math.Min(MaxTimeScale, v))
}
