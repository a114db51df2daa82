package entity

import "errors"

var (
	// ErrProviderError is a non-success or unreadable response from the tracking provider
	ErrProviderError = errors.New("flight provider error")
	// ErrNoLiveData means the provider has no record for the flight
	ErrNoLiveData = errors.New("no live data available")
	// ErrNotAirborne means the flight has no position or speed yet
	ErrNotAirborne = errors.New("flight not yet departed")
	// ErrStalledFlight means the ground speed is too low to project an arrival
	ErrStalledFlight = errors.New("flight speed too low to project arrival")
	// ErrUnresolvedAirport means the pickup text names no known airport
	ErrUnresolvedAirport = errors.New("pickup matches no known airport")
	// ErrInvalidTripTime means the trip time could not be parsed
	ErrInvalidTripTime = errors.New("invalid trip time")
	// ErrStoreUnavailable is a read or write failure against the trip store
	ErrStoreUnavailable = errors.New("trip store unavailable")
	// ErrTripNotFound means a write matched no trip
	ErrTripNotFound = errors.New("trip not found")
	// ErrAirportNotFound means the airport table has no entry for a code
	ErrAirportNotFound = errors.New("airport not found")
)

// Failure reasons used as metric labels
const (
	ReasonProviderError     = "provider_error"
	ReasonNoLiveData        = "no_live_data"
	ReasonNotAirborne       = "not_airborne"
	ReasonStalledFlight     = "stalled_flight"
	ReasonUnresolvedAirport = "unresolved_airport"
	ReasonInvalidTripTime   = "invalid_trip_time"
	ReasonStoreUnavailable  = "store_unavailable"
	ReasonUnknown           = "unknown"
)

// FailureReason maps an error to a stable label
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrNotAirborne):
		return ReasonNotAirborne
	case errors.Is(err, ErrNoLiveData):
		return ReasonNoLiveData
	case errors.Is(err, ErrProviderError):
		return ReasonProviderError
	case errors.Is(err, ErrStalledFlight):
		return ReasonStalledFlight
	case errors.Is(err, ErrUnresolvedAirport):
		return ReasonUnresolvedAirport
	case errors.Is(err, ErrInvalidTripTime):
		return ReasonInvalidTripTime
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrTripNotFound):
		return ReasonStoreUnavailable
	default:
		return ReasonUnknown
	}
}
