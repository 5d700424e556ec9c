package domain

import "time"

// Clock supplies the time stamped on emitted events
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// Now returns the current time in UTC
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always reports the same instant, for tests
type FixedClock struct {
	FixedTime time.Time
}

// Now returns FixedTime
func (f FixedClock) Now() time.Time {
	return f.FixedTime
}
