package jwt

import "time"

// Clock provides the current time for issuing and validating tokens
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now implements Clock
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock is the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock returns a clock that always reports t,
// useful to pin the time in tests
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
