package usecase

import (
	"sort"
	"time"

	"eta-worker-service/internal/domain/entity"
	"eta-worker-service/pkg/utils"
)

// DueTrip is a trip selected for an ETA refresh in the current tick
type DueTrip struct {
	Trip        *entity.Trip
	AirportCode string
	Scheduled   time.Time
}

// SkippedTrip is an active trip left out of the tick because of bad data
type SkippedTrip struct {
	Trip *entity.Trip
	Err  error
}

// TripFilter decides which trips are due for a refresh
type TripFilter struct {
	Window  time.Duration
	Cadence time.Duration
}

// ActiveArrivalsToday keeps non-terminal arrival trips dated on today's calendar day,
// ordered by trip id
func ActiveArrivalsToday(trips map[string]*entity.Trip, today time.Time) []*entity.Trip {
	todayStr := utils.FormatTripDate(today)

	active := make([]*entity.Trip, 0)
	for _, trip := range trips {
		if trip == nil || trip.TripType != entity.TripTypeArrival || trip.IsTerminal() {
			continue
		}
		if trip.Date != todayStr {
			continue
		}
		active = append(active, trip)
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].TripID < active[j].TripID
	})
	return active
}

// InRefreshWindow reports whether now lies in the closed interval [scheduled-window, scheduled].
// Comparison is at minute precision.
func InRefreshWindow(scheduled, now time.Time, window time.Duration) bool {
	now = now.Truncate(time.Minute)
	return !now.Before(scheduled.Add(-window)) && !now.After(scheduled)
}

// OnRefreshCadence reports whether the minute of the hour is a multiple of cadence
func OnRefreshCadence(now time.Time, cadence time.Duration) bool {
	minutes := int(cadence / time.Minute)
	if minutes <= 1 {
		return true
	}
	return now.Minute()%minutes == 0
}

// SelectDue applies the refresh gates to the active trips. now must be in the region's location.
func (f TripFilter) SelectDue(trips map[string]*entity.Trip, now time.Time) ([]DueTrip, []SkippedTrip) {
	var due []DueTrip
	var skipped []SkippedTrip

	if !OnRefreshCadence(now, f.Cadence) {
		return due, skipped
	}

	for _, trip := range ActiveArrivalsToday(trips, now) {
		scheduled, err := utils.ParseLocalTime(trip.Time, now)
		if err != nil {
			skipped = append(skipped, SkippedTrip{Trip: trip, Err: err})
			continue
		}

		if !InRefreshWindow(scheduled, now, f.Window) {
			continue
		}

		airportCode, err := utils.ResolveAirportCode(trip.Pickup)
		if err != nil {
			skipped = append(skipped, SkippedTrip{Trip: trip, Err: err})
			continue
		}

		due = append(due, DueTrip{
			Trip:        trip,
			AirportCode: airportCode,
			Scheduled:   scheduled,
		})
	}

	return due, skipped
}
