package usecase

import (
	"fmt"
	"math"
	"time"

	"eta-worker-service/internal/domain/entity"
	"eta-worker-service/pkg/utils"
)

// MinProjectableSpeed is the slowest ground speed, in km/h, an arrival is projected from
const MinProjectableSpeed = 1.0

// Projection is the result of projecting a flight snapshot to its arrival
type Projection struct {
	DistanceKm   float64
	ETAHours     float64
	LocalArrival time.Time
}

// ETAProjector turns live telemetry into a region-local arrival estimate
type ETAProjector struct {
	location *time.Location
	buffer   time.Duration
}

// NewETAProjector creates a projector reporting arrivals in location, padded by buffer
func NewETAProjector(location *time.Location, buffer time.Duration) *ETAProjector {
	if location == nil {
		location = time.UTC
	}
	return &ETAProjector{
		location: location,
		buffer:   buffer,
	}
}

// Project computes distance, flight time left and local arrival. It is pure: the same
// snapshot and now always give the same projection.
func (p *ETAProjector) Project(snapshot *entity.FlightSnapshot, now time.Time) (Projection, error) {
	if snapshot == nil || snapshot.Position == nil || snapshot.Speed == nil {
		return Projection{}, entity.ErrNotAirborne
	}
	if snapshot.Arrival == nil {
		return Projection{}, fmt.Errorf("%w: no arrival point", entity.ErrProviderError)
	}

	speed := snapshot.Speed.Horizontal
	if math.IsNaN(speed) || speed < MinProjectableSpeed {
		return Projection{}, fmt.Errorf("%w: %.2f km/h", entity.ErrStalledFlight, speed)
	}

	distance := utils.DistanceKm(
		snapshot.Position.Latitude, snapshot.Position.Longitude,
		snapshot.Arrival.Latitude, snapshot.Arrival.Longitude,
	)
	etaHours := distance / speed
	if math.IsNaN(etaHours) || math.IsInf(etaHours, 0) {
		return Projection{}, fmt.Errorf("%w: non-finite estimate", entity.ErrStalledFlight)
	}

	remaining := time.Duration(etaHours * float64(time.Hour))
	localArrival := now.UTC().Add(remaining).In(p.location).Add(p.buffer)

	return Projection{
		DistanceKm:   distance,
		ETAHours:     etaHours,
		LocalArrival: localArrival,
	}, nil
}

// ToETA builds the stored estimate; now is the computation time
func (p *ETAProjector) ToETA(projection Projection, now time.Time) entity.ETA {
	return entity.ETA{
		Est:       projection.LocalArrival.Format(utils.ETA_LAYOUT),
		Timestamp: now.UnixMilli(),
	}
}
