package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"eta-worker-service/internal/domain/entity"
	"eta-worker-service/internal/infrastructure/scheduler"
	"eta-worker-service/internal/usecase"
	"eta-worker-service/pkg/logger"
	"eta-worker-service/pkg/metrics"
	"eta-worker-service/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTripRepository struct{ mock.Mock }

func (m *MockTripRepository) ReadAll(ctx context.Context) (map[string]*entity.Trip, error) {
	args := m.Called(ctx)
	trips, _ := args.Get(0).(map[string]*entity.Trip)
	return trips, args.Error(1)
}

func (m *MockTripRepository) PatchETA(ctx context.Context, tripID string, eta entity.ETA) error {
	args := m.Called(ctx, tripID, eta)
	return args.Error(0)
}

type MockFlightTracker struct{ mock.Mock }

func (m *MockFlightTracker) Fetch(ctx context.Context, flightNumber string, airportCode string) (*entity.FlightSnapshot, error) {
	args := m.Called(ctx, flightNumber, airportCode)
	snapshot, _ := args.Get(0).(*entity.FlightSnapshot)
	return snapshot, args.Error(1)
}

// fakeClock is safe for concurrent reads and can be moved between ticks
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var region = utils.RegionLocation(8)

func airborne(speed float64) *entity.FlightSnapshot {
	return &entity.FlightSnapshot{
		Position: &entity.Coordinate{Latitude: 14.0, Longitude: 121.0},
		Speed:    &entity.Speed{Horizontal: speed},
		Arrival:  &entity.Coordinate{Latitude: 15.1869, Longitude: 120.5604},
	}
}

func dueArrival(id, flight, pickup string) *entity.Trip {
	return &entity.Trip{
		TripID:       id,
		TripType:     entity.TripTypeArrival,
		Status:       entity.TripStatusPending,
		Date:         "2026-03-10",
		Time:         "2:30PM",
		Pickup:       pickup,
		FlightNumber: flight,
	}
}

func newTestWorker(trips *MockTripRepository, tracker *MockFlightTracker, clock *fakeClock) (*usecase.ETAWorker, *metrics.Metrics) {
	m := metrics.NewMetricsWithRegisterer("test", prometheus.NewRegistry())
	worker := usecase.NewETAWorker(
		trips,
		tracker,
		usecase.NewETAProjector(region, 5*time.Minute),
		usecase.TripFilter{Window: time.Hour, Cadence: 15 * time.Minute},
		region,
		4,
		m,
		logger.NewNopLogger(),
	).WithClock(clock.Now)
	return worker, m
}

func TestETAWorker_RunTick_IsolatesFailures(t *testing.T) {
	ctx := t.Context()
	// 13:30 in the region
	clock := &fakeClock{now: time.Date(2026, 3, 10, 5, 30, 0, 0, time.UTC)}

	trips := new(MockTripRepository)
	tracker := new(MockFlightTracker)
	trips.On("ReadAll", mock.Anything).Return(map[string]*entity.Trip{
		"t1": dueArrival("t1", "5J188", "Clark (CRK)"),
		"t2": dueArrival("t2", "PR102", "NAIA (MNL)"),
		"t3": dueArrival("t3", "Z2441", "NAIA (MNL)"),
	}, nil).Once()

	tracker.On("Fetch", mock.Anything, "5J188", "RPLC").Return(airborne(500), nil).Once()
	tracker.On("Fetch", mock.Anything, "PR102", "RPLL").Return(airborne(600), nil).Once()
	tracker.On("Fetch", mock.Anything, "Z2441", "RPLL").Return(airborne(550), nil).Once()

	wantETA := entity.ETA{Est: "2026-03-10 13:51:49", Timestamp: clock.now.UnixMilli()}
	trips.On("PatchETA", mock.Anything, "t1", wantETA).Return(nil).Once()
	trips.On("PatchETA", mock.Anything, "t2", mock.AnythingOfType("entity.ETA")).
		Return(fmt.Errorf("%w: connection reset", entity.ErrStoreUnavailable)).Once()
	trips.On("PatchETA", mock.Anything, "t3", mock.AnythingOfType("entity.ETA")).Return(nil).Once()

	worker, m := newTestWorker(trips, tracker, clock)
	err := worker.RunTick(ctx)
	require.NoError(t, err)

	trips.AssertExpectations(t)
	tracker.AssertExpectations(t)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ETAUpdates))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TripFailures.WithLabelValues(entity.ReasonStoreUnavailable)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TripsDue))
}

func TestETAWorker_RunTick_ReadFailureAbortsTick(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 5, 30, 0, 0, time.UTC)}

	trips := new(MockTripRepository)
	tracker := new(MockFlightTracker)
	trips.On("ReadAll", mock.Anything).Return(nil, fmt.Errorf("%w: timeout", entity.ErrStoreUnavailable)).Once()

	worker, m := newTestWorker(trips, tracker, clock)
	err := worker.RunTick(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrStoreUnavailable)

	tracker.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
	trips.AssertNotCalled(t, "PatchETA", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TickFailures))
}

func TestETAWorker_RunTick_SkipsWithoutWriting(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 5, 30, 0, 0, time.UTC)}

	trips := new(MockTripRepository)
	tracker := new(MockFlightTracker)
	trips.On("ReadAll", mock.Anything).Return(map[string]*entity.Trip{
		"grounded": dueArrival("grounded", "5J188", "Clark (CRK)"),
		"stalled":  dueArrival("stalled", "PR102", "NAIA (MNL)"),
		"missing":  dueArrival("missing", "Z2441", "NAIA (MNL)"),
		"hotel":    dueArrival("hotel", "DG6011", "Makati Shangri-La"),
	}, nil).Once()

	tracker.On("Fetch", mock.Anything, "5J188", "RPLC").Return(nil, fmt.Errorf("5J188: %w", entity.ErrNotAirborne)).Once()
	tracker.On("Fetch", mock.Anything, "PR102", "RPLL").Return(airborne(0), nil).Once()
	tracker.On("Fetch", mock.Anything, "Z2441", "RPLL").Return(nil, entity.ErrNoLiveData).Once()

	worker, m := newTestWorker(trips, tracker, clock)
	require.NoError(t, worker.RunTick(t.Context()))

	tracker.AssertExpectations(t)
	tracker.AssertNumberOfCalls(t, "Fetch", 3)
	trips.AssertNotCalled(t, "PatchETA", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TripFailures.WithLabelValues(entity.ReasonNotAirborne)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TripFailures.WithLabelValues(entity.ReasonStalledFlight)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TripFailures.WithLabelValues(entity.ReasonNoLiveData)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TripFailures.WithLabelValues(entity.ReasonUnresolvedAirport)))
	assert.Zero(t, testutil.ToFloat64(m.ETAUpdates))
}

func TestETAWorker_RunTick_OncePerCadenceSlot(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 5, 30, 0, 0, time.UTC)}

	trips := new(MockTripRepository)
	tracker := new(MockFlightTracker)
	trips.On("ReadAll", mock.Anything).Return(map[string]*entity.Trip{
		"t1": dueArrival("t1", "5J188", "Clark (CRK)"),
	}, nil)
	tracker.On("Fetch", mock.Anything, "5J188", "RPLC").Return(airborne(500), nil)
	trips.On("PatchETA", mock.Anything, "t1", mock.AnythingOfType("entity.ETA")).Return(nil)

	worker, _ := newTestWorker(trips, tracker, clock)

	// Two ticks inside 13:30 refresh once
	require.NoError(t, worker.RunTick(t.Context()))
	clock.Set(clock.Now().Add(40 * time.Second))
	require.NoError(t, worker.RunTick(t.Context()))
	tracker.AssertNumberOfCalls(t, "Fetch", 1)

	// Off cadence at 13:31
	clock.Set(time.Date(2026, 3, 10, 5, 31, 0, 0, time.UTC))
	require.NoError(t, worker.RunTick(t.Context()))
	tracker.AssertNumberOfCalls(t, "Fetch", 1)

	// Next slot at 13:45
	clock.Set(time.Date(2026, 3, 10, 5, 45, 0, 0, time.UTC))
	require.NoError(t, worker.RunTick(t.Context()))
	tracker.AssertNumberOfCalls(t, "Fetch", 2)
	trips.AssertNumberOfCalls(t, "PatchETA", 2)
}

func TestETAWorker_RunTick_FinishesBatchAfterCancel(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 5, 30, 0, 0, time.UTC)}
	ctx, cancel := context.WithCancel(context.Background())

	trips := new(MockTripRepository)
	tracker := new(MockFlightTracker)
	trips.On("ReadAll", mock.Anything).Return(map[string]*entity.Trip{
		"t1": dueArrival("t1", "5J188", "Clark (CRK)"),
	}, nil)
	tracker.On("Fetch", mock.Anything, "5J188", "RPLC").
		Run(func(args mock.Arguments) { cancel() }).
		Return(airborne(500), nil)
	trips.On("PatchETA", mock.Anything, "t1", mock.AnythingOfType("entity.ETA")).
		Run(func(args mock.Arguments) {
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(nil)

	worker, _ := newTestWorker(trips, tracker, clock)
	require.NoError(t, worker.RunTick(ctx))
	trips.AssertNumberOfCalls(t, "PatchETA", 1)
}

type stubScheduler struct{ ticks int }

func (s *stubScheduler) Run(ctx context.Context, fn scheduler.TickFunc) error {
	for range s.ticks {
		fn(ctx)
	}
	return nil
}

func TestETAWorker_StartSurvivesFailingTicks(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 5, 30, 0, 0, time.UTC)}

	trips := new(MockTripRepository)
	tracker := new(MockFlightTracker)
	trips.On("ReadAll", mock.Anything).Return(nil, errors.New("boom")).Times(3)

	worker, m := newTestWorker(trips, tracker, clock)
	require.NoError(t, worker.Start(t.Context(), &stubScheduler{ticks: 3}))

	trips.AssertExpectations(t)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Ticks))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TickFailures))
}
