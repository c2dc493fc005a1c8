package clock

import "time"

// Clock is the single time source of the engine. Session elapsed seconds
// are derived from it, never from the ticker that drives refreshes.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts a plain function, typically a test stub.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }
