package clock

import "time"

// Clock is a small abstraction for obtaining the current time.
// Discount policies depend on the wall clock, so production code takes a
// Clock instead of calling time.Now directly.
type Clock interface {
	Now() time.Time
}

// Real returns the real current time.
type Real struct{}

// Now returns the current local time.
func (Real) Now() time.Time {
	return time.Now()
}

// Fake is a controllable clock for tests.
type Fake struct {
	now time.Time
}

// NewFake creates a Fake set to the given time.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	return f.now
}

// Set moves the fake clock to a specific time.
func (f *Fake) Set(t time.Time) {
	f.now = t
}

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}
