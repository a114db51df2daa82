package repository

import (
	"context"

	"eta-worker-service/internal/domain/entity"
)

// AirportRepository defines the interface for airport coordinate lookups
type AirportRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Airport, error)
}
