// internal/domain/entity/trip.go
package entity

// Trip types and statuses the worker cares about
const (
	TripTypeArrival   = "Arrival"
	TripTypeDeparture = "Departure"

	TripStatusPending    = "Pending"
	TripStatusInProgress = "InProgress"
	TripStatusCompleted  = "Completed"
	TripStatusCancelled  = "Cancelled"
)

// Trip is the worker's read-only view of a schedule record
type Trip struct {
	TripID       string `bson:"_id" json:"-"`
	TripType     string `bson:"tripType" json:"tripType"`
	Status       string `bson:"status" json:"status"`
	Date         string `bson:"date" json:"date"` // YYYY-MM-DD, region-local
	Time         string `bson:"time" json:"time"` // e.g. "2:30PM"
	Pickup       string `bson:"pickup" json:"pickup"`
	FlightNumber string `bson:"flightNumber" json:"flightNumber"`
	ETA          *ETA   `bson:"ETA,omitempty" json:"ETA,omitempty"`
}

// IsTerminal reports whether the trip has finished or been called off
func (t *Trip) IsTerminal() bool {
	return t.Status == TripStatusCompleted || t.Status == TripStatusCancelled
}

// ETA is the estimate written back to a trip.
// Timestamp is when the estimate was computed, not the projected arrival.
type ETA struct {
	Est       string `bson:"est" json:"est"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"` // epoch millis
}
