package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eta-worker-service/internal/domain/entity"
	"eta-worker-service/internal/domain/repository"
	"eta-worker-service/pkg/logger"

	"gorm.io/gorm"
)

// StaticAirportRepository serves airports from an in-memory table
type StaticAirportRepository struct {
	airports map[string]entity.Airport
}

// NewStaticAirportRepository creates a static airport repository.
// A nil table uses entity.DefaultAirports.
func NewStaticAirportRepository(airports map[string]entity.Airport) repository.AirportRepository {
	if airports == nil {
		airports = entity.DefaultAirports
	}
	return &StaticAirportRepository{
		airports: airports,
	}
}

// GetByCode finds an airport by ICAO code
func (r *StaticAirportRepository) GetByCode(ctx context.Context, code string) (*entity.Airport, error) {
	airport, ok := r.airports[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrAirportNotFound, code)
	}
	return &airport, nil
}

// GormAirportRepository implements AirportRepository on the m_airports table.
// Codes missing from the table are looked up in the fallback repository.
type GormAirportRepository struct {
	db       *gorm.DB
	fallback repository.AirportRepository
	logger   logger.Logger
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB, fallback repository.AirportRepository, logger logger.Logger) repository.AirportRepository {
	return &GormAirportRepository{
		db:       db,
		fallback: fallback,
		logger:   logger,
	}
}

// Airports GORM model for database mapping
type Airports struct {
	ID        uint    `gorm:"primaryKey"`
	Code      string  `gorm:"column:code;unique"`
	Name      string  `gorm:"column:name"`
	Latitude  float64 `gorm:"column:latitude"`
	Longitude float64 `gorm:"column:longitude"`
}

// TableName overrides the default table name
func (Airports) TableName() string {
	return "m_airports"
}

// GetByCode finds an airport by code
func (r *GormAirportRepository) GetByCode(ctx context.Context, code string) (*entity.Airport, error) {
	var airport Airports
	result := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&airport)

	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Warn("Airport table lookup failed, using fallback", "code", code, "error", result.Error)
		}
		if r.fallback == nil {
			return nil, fmt.Errorf("%w: %s", entity.ErrAirportNotFound, code)
		}
		return r.fallback.GetByCode(ctx, code)
	}

	return &entity.Airport{
		Code:      airport.Code,
		Name:      airport.Name,
		Latitude:  airport.Latitude,
		Longitude: airport.Longitude,
	}, nil
}
