package service

import "time"

// Clock returns the current time.  Services read time only through a Clock
// so expiry behavior can be tested with a fixed instant.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time { return time.Now().UTC() }

func (c Clock) now() time.Time {
	if c == nil {
		return SystemClock()
	}
	return c().UTC()
}
