package utils

import "time"

// Timer measures the wall-clock time of one operation. NewTimer starts it;
// Stop freezes the elapsed duration.
type Timer struct {
	start    time.Time
	duration time.Duration
	stopped  bool
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop records the elapsed time. Later calls are no-ops.
func (t *Timer) Stop() time.Duration {
	if !t.stopped {
		t.duration = time.Since(t.start)
		t.stopped = true
	}
	return t.duration
}

// Elapsed returns the frozen duration after Stop, or the running time
// before it.
func (t *Timer) Elapsed() time.Duration {
	if t.stopped {
		return t.duration
	}
	return time.Since(t.start)
}
