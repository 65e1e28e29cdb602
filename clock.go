package govalid

import "time"

// ClockProvider supplies the current time for time-sensitive constraints
// (e.g. a "must be in the past/future" date check) so they can be tested
// deterministically (spec.md §6). An Engine carries one in its Clock field;
// ConstraintValidatorContext does not expose it to validators.
type ClockProvider interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock delegates to time.Now. An Engine does not substitute it for a
// nil Clock field; callers set it explicitly.
var SystemClock ClockProvider = systemClock{}

// FixedClock is a ClockProvider returning a constant instant; useful in
// tests that assert on date-constraint behaviour.
type FixedClock struct {
	At time.Time
}

func (f FixedClock) Now() time.Time { return f.At }
