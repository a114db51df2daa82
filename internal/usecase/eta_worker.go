package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"eta-worker-service/internal/domain/entity"
	"eta-worker-service/internal/domain/repository"
	"eta-worker-service/internal/infrastructure/scheduler"
	"eta-worker-service/pkg/logger"
	"eta-worker-service/pkg/metrics"
	"eta-worker-service/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ETAWorker refreshes arrival estimates for trips that are due
type ETAWorker struct {
	tripRepo    repository.TripRepository
	tracker     repository.FlightTrackerRepository
	projector   *ETAProjector
	filter      TripFilter
	location    *time.Location
	concurrency int
	clock       func() time.Time
	metrics     *metrics.Metrics
	logger      logger.Logger

	mu sync.Mutex
	// refreshed holds the cadence slot each trip was last refreshed in
	refreshed map[string]time.Time
}

// NewETAWorker creates a new ETA worker
func NewETAWorker(
	tripRepo repository.TripRepository,
	tracker repository.FlightTrackerRepository,
	projector *ETAProjector,
	filter TripFilter,
	location *time.Location,
	concurrency int,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ETAWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	if location == nil {
		location = time.UTC
	}

	return &ETAWorker{
		tripRepo:    tripRepo,
		tracker:     tracker,
		projector:   projector,
		filter:      filter,
		location:    location,
		concurrency: concurrency,
		clock:       time.Now,
		metrics:     metrics,
		logger:      logger,
		refreshed:   make(map[string]time.Time),
	}
}

// WithClock replaces the wall clock, for tests
func (w *ETAWorker) WithClock(clock func() time.Time) *ETAWorker {
	w.clock = clock
	return w
}

// Start runs ticks on sched until ctx is cancelled
func (w *ETAWorker) Start(ctx context.Context, sched scheduler.Scheduler) error {
	w.logger.Info("ETA worker started",
		"window", w.filter.Window.String(),
		"cadence", w.filter.Cadence.String(),
		"location", w.location.String(),
		"concurrency", w.concurrency,
	)

	err := sched.Run(ctx, func(ctx context.Context) {
		// Failures are logged and counted inside the tick
		_ = w.RunTick(ctx)
	})

	w.logger.Info("ETA worker stopped")
	return err
}

// RunTick processes one batch. Only a failure to read the trip snapshot is returned;
// per-trip failures are logged and the batch carries on. Once started, a batch runs to
// completion even if ctx is cancelled.
func (w *ETAWorker) RunTick(ctx context.Context) error {
	log := w.logger.With("tickId", uuid.NewString())
	start := time.Now()
	w.incTicks()

	now := w.clock().In(w.location)

	trips, err := w.tripRepo.ReadAll(ctx)
	if err != nil {
		w.incTickFailures()
		log.Error("Failed to read trips, skipping tick", "error", err)
		return fmt.Errorf("read trips: %w", err)
	}

	due, skipped := w.filter.SelectDue(trips, now)
	for _, s := range skipped {
		w.recordFailure(log.With("tripId", s.Trip.TripID), s.Err)
	}

	due = w.claim(due, now)
	if w.metrics != nil {
		w.metrics.TripsDue.Set(float64(len(due)))
	}

	if len(due) == 0 {
		log.Debug("No trips due", "trips", len(trips), "skipped", len(skipped))
		w.observeDuration(start)
		return nil
	}

	batchCtx := context.WithoutCancel(ctx)
	g, gctx := errgroup.WithContext(batchCtx)
	g.SetLimit(w.concurrency)

	var updated atomic.Int64
	for _, d := range due {
		g.Go(func() error {
			if w.refreshTrip(gctx, log, d) {
				updated.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	w.observeDuration(start)
	log.Info("Tick completed",
		"trips", len(trips),
		"due", len(due),
		"updated", updated.Load(),
		"skipped", len(skipped),
		"duration", time.Since(start).String(),
	)

	return nil
}

// refreshTrip fetches, projects and stores one estimate. It reports whether an ETA was written.
func (w *ETAWorker) refreshTrip(ctx context.Context, log logger.Logger, d DueTrip) bool {
	log = log.With(
		"tripId", d.Trip.TripID,
		"flight", d.Trip.FlightNumber,
		"airport", d.AirportCode,
	)

	snapshot, err := w.tracker.Fetch(ctx, d.Trip.FlightNumber, d.AirportCode)
	if err != nil {
		w.recordFailure(log, err)
		return false
	}
	if snapshot.ArrivalFromFallback {
		log.Debug("Provider gave no arrival point, using airport coordinates")
	}

	computedAt := w.clock()
	projection, err := w.projector.Project(snapshot, computedAt)
	if err != nil {
		w.recordFailure(log, err)
		return false
	}

	eta := w.projector.ToETA(projection, computedAt)
	if err := w.tripRepo.PatchETA(ctx, d.Trip.TripID, eta); err != nil {
		w.recordFailure(log, err)
		return false
	}

	if w.metrics != nil {
		w.metrics.ETAUpdates.Inc()
	}
	log.Info("ETA updated",
		"est", eta.Est,
		"distanceKm", projection.DistanceKm,
		"etaHours", projection.ETAHours,
	)
	return true
}

// claim drops trips already refreshed in the current cadence slot and marks the rest
func (w *ETAWorker) claim(due []DueTrip, now time.Time) []DueTrip {
	slot := utils.CadenceSlot(now, w.filter.Cadence)

	w.mu.Lock()
	defer w.mu.Unlock()

	for id, last := range w.refreshed {
		if last.Before(slot) {
			delete(w.refreshed, id)
		}
	}

	claimed := make([]DueTrip, 0, len(due))
	for _, d := range due {
		if last, ok := w.refreshed[d.Trip.TripID]; ok && last.Equal(slot) {
			continue
		}
		w.refreshed[d.Trip.TripID] = slot
		claimed = append(claimed, d)
	}
	return claimed
}

func (w *ETAWorker) recordFailure(log logger.Logger, err error) {
	reason := entity.FailureReason(err)
	if w.metrics != nil {
		w.metrics.TripFailures.WithLabelValues(reason).Inc()
	}

	switch reason {
	case entity.ReasonNotAirborne, entity.ReasonUnresolvedAirport:
		log.Debug("Trip skipped", "reason", reason, "error", err)
	case entity.ReasonInvalidTripTime:
		log.Warn("Trip skipped", "reason", reason, "error", err)
	default:
		log.Error("Failed to update ETA", "reason", reason, "error", err)
	}
}

func (w *ETAWorker) incTicks() {
	if w.metrics != nil {
		w.metrics.Ticks.Inc()
	}
}

func (w *ETAWorker) incTickFailures() {
	if w.metrics != nil {
		w.metrics.TickFailures.Inc()
	}
}

func (w *ETAWorker) observeDuration(start time.Time) {
	if w.metrics != nil {
		w.metrics.TickDuration.Observe(time.Since(start).Seconds())
	}
}
