// Package scheduler drives the worker's ticks.
//
// Both schedulers guarantee that ticks never overlap. The interval scheduler runs a tick
// immediately and then waits the full interval after each tick returns. The cron
// scheduler fires on a cron expression and skips a firing while a tick is still running.
// Stopping either one lets the tick in flight finish.
package scheduler

import (
	"context"
	"time"

	"eta-worker-service/pkg/logger"

	"github.com/robfig/cron/v3"
)

// TickFunc processes one batch
type TickFunc func(ctx context.Context)

// Scheduler runs fn repeatedly until ctx is cancelled
type Scheduler interface {
	Run(ctx context.Context, fn TickFunc) error
}

// IntervalScheduler sleeps a fixed interval between the end of one tick and the start of the next
type IntervalScheduler struct {
	interval time.Duration
	logger   logger.Logger
}

// NewIntervalScheduler creates a new interval scheduler
func NewIntervalScheduler(interval time.Duration, logger logger.Logger) *IntervalScheduler {
	return &IntervalScheduler{
		interval: interval,
		logger:   logger,
	}
}

// Run ticks immediately, then after every interval, until ctx is done
func (s *IntervalScheduler) Run(ctx context.Context, fn TickFunc) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Interval scheduler stopped")
			return nil
		case <-timer.C:
			fn(ctx)
			timer.Reset(s.interval)
		}
	}
}

// CronScheduler fires ticks on a cron expression
type CronScheduler struct {
	spec   string
	cron   *cron.Cron
	logger logger.Logger
}

// NewCronScheduler creates a cron scheduler. The expression accepts an optional seconds field
// and descriptors such as "@every 1m".
func NewCronScheduler(spec string, location *time.Location, logger logger.Logger) (*CronScheduler, error) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, err
	}

	return &CronScheduler{
		spec: spec,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger,
	}, nil
}

// Run starts the cron, blocks until ctx is done and waits for a running tick to finish
func (s *CronScheduler) Run(ctx context.Context, fn TickFunc) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		fn(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Cron scheduler started", "spec", s.spec)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("Cron scheduler stopped")
	return nil
}
