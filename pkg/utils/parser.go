package utils

import (
	"fmt"
	"strings"
	"time"

	"eta-worker-service/internal/domain/entity"
)

// ParseLocalTime parses a 12-hour clock value such as "2:30PM" into an instant on
// the calendar day of day, in day's location. Seconds are always zero.
func ParseLocalTime(value string, day time.Time) (time.Time, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
	if normalized == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", entity.ErrInvalidTripTime)
	}

	clock, err := time.Parse(TRIP_TIME_LAYOUT, normalized)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", entity.ErrInvalidTripTime, value, err)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location()), nil
}

// ResolveAirportCode derives the destination airport from markers embedded in pickup text
func ResolveAirportCode(pickup string) (string, error) {
	for _, m := range PickupMarkers {
		if strings.Contains(pickup, m.Marker) {
			return m.AirportCode, nil
		}
	}
	return "", fmt.Errorf("%w: %q", entity.ErrUnresolvedAirport, pickup)
}

// FormatTripDate formats t as a trip calendar date
func FormatTripDate(t time.Time) string {
	return t.Format(TRIP_DATE_LAYOUT)
}
