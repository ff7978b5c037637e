package services

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/nfaa/webapp/internal/core/ports"
)

// Janitor periodically purges expired entries from the in-memory stores,
// off the request path.
type Janitor struct {
	cron     *cron.Cron
	clock    ports.Clock
	sweepers []ports.Sweeper
	logger   *logrus.Logger
}

// NewJanitor schedules a sweep of every sweeper on schedule (for example "@every 1m").
func NewJanitor(schedule string, clock ports.Clock, logger *logrus.Logger, sweepers ...ports.Sweeper) (*Janitor, error) {
	j := &Janitor{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		clock:    clock,
		sweepers: sweepers,
		logger:   logger,
	}
	if _, err := j.cron.AddFunc(schedule, func() { j.RunOnce() }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return j, nil
}

func (j *Janitor) Start() { j.cron.Start() }

// Stop halts scheduling and waits for a running sweep to finish.
func (j *Janitor) Stop() { <-j.cron.Stop().Done() }

// RunOnce sweeps every registered store and returns the total removed.
func (j *Janitor) RunOnce() int {
	now := j.clock.Now()
	total := 0
	for _, s := range j.sweepers {
		removed := s.Sweep(now)
		total += removed
		if removed > 0 && j.logger != nil {
			j.logger.WithFields(logrus.Fields{"store": s.Name(), "removed": removed}).Debug("janitor: swept expired entries")
		}
	}
	return total
}
