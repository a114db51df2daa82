package entity

// Coordinate is a WGS84 point in decimal degrees
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Speed holds provider speed readings
type Speed struct {
	Horizontal float64 // km/h
}

// FlightSnapshot is the live telemetry of one flight at query time
type FlightSnapshot struct {
	FlightNumber string
	Position     *Coordinate
	Speed        *Speed
	Arrival      *Coordinate

	// ArrivalFromFallback is set when Arrival came from the airport table
	ArrivalFromFallback bool
}
