package clock

import "time"

// Clock allows injecting time in domain/services.
type Clock interface {
	Now() time.Time
	// After delivers the current time once d has elapsed. Workers select on
	// it alongside their context so pacing never outlives a cancelled run.
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always returns the same instant (useful for tests).
// Its After fires immediately, so paced loops run without real sleeps.
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

func (f fixedClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- f.now
	return ch
}
