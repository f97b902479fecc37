package clock

import "time"

// Clock stamps sessions, credentials and history entries; mocked in tests
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC with the monotonic reading stripped,
// matching what storage hands back
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Round(0)
}
