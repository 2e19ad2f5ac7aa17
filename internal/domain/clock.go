package domain

import "github.com/jonboulle/clockwork"

// clock is the time source for the timestamp fallback in ParseObservation,
// swappable so tests can freeze time via SetClock. Production code uses the
// real clock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
