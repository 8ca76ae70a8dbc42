package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DateLayout is the archive API's date parameter format.
const DateLayout = "2006-01-02"

// clock is a package-level time source so tests can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the package clock.
func Now() time.Time {
	return clock.Now()
}

// ArchiveWindow returns the start and end dates (YYYY-MM-DD) of a trailing
// window of the given number of days that ends today.
func ArchiveWindow(days int) (start, end string) {
	now := clock.Now()
	return now.AddDate(0, 0, -days).Format(DateLayout), now.Format(DateLayout)
}
