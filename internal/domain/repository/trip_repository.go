package repository

import (
	"context"

	"eta-worker-service/internal/domain/entity"
)

// TripRepository defines the trip store operations the worker needs
type TripRepository interface {
	// ReadAll returns a full snapshot of trips keyed by trip ID
	ReadAll(ctx context.Context) (map[string]*entity.Trip, error)
	// PatchETA replaces the ETA sub-object of one trip, leaving other fields untouched
	PatchETA(ctx context.Context, tripID string, eta entity.ETA) error
}
