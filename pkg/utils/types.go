package utils

// PickupMarker maps a substring of pickup text to an airport code
type PickupMarker struct {
	Marker      string
	AirportCode string
}

// Constants
const (
	TRIP_DATE_LAYOUT = "2006-01-02"
	TRIP_TIME_LAYOUT = "3:04PM"
	ETA_LAYOUT       = "2006-01-02 15:04:05"
)

// PickupMarkers are checked in order; the first match wins
var PickupMarkers = []PickupMarker{
	{Marker: "(MNL)", AirportCode: "RPLL"},
	{Marker: "(CRK)", AirportCode: "RPLC"},
}
