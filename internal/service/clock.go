package service

import "time"

// Clock supplies the current time to mutating operations. The domain
// layer never reads system time itself; services thread a timestamp
// into every mutator so tests can pin the clock.
type Clock func() time.Time

// SystemClock is the production clock.
func SystemClock() time.Time { return time.Now().UTC() }
