package repository

import (
	"context"

	"eta-worker-service/internal/domain/entity"
)

// FlightTrackerRepository defines the interface for live flight lookups
type FlightTrackerRepository interface {
	Fetch(ctx context.Context, flightNumber string, airportCode string) (*entity.FlightSnapshot, error)
}
