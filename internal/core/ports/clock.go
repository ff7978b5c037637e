package ports

import "time"

// Clock abstracts wall-clock time. clockwork.Clock satisfies it, so production
// code passes clockwork.NewRealClock() and tests a clockwork.FakeClock.
type Clock interface {
	Now() time.Time
}

// Sweeper is implemented by stores that can drop expired entries in bulk.
// Sweep returns the number of entries removed.
type Sweeper interface {
	Name() string
	Sweep(now time.Time) int
}
