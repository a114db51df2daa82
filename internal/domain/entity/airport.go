package entity

// Airport is a fallback arrival point keyed by ICAO code
type Airport struct {
	Code      string
	Name      string
	Latitude  float64
	Longitude float64
}

// Coordinate returns the airport position
func (a *Airport) Coordinate() Coordinate {
	return Coordinate{Latitude: a.Latitude, Longitude: a.Longitude}
}

// DefaultAirports is the built-in fallback table
var DefaultAirports = map[string]Airport{
	"RPLL": {Code: "RPLL", Name: "Ninoy Aquino International Airport", Latitude: 14.5086, Longitude: 121.019},
	"RPLC": {Code: "RPLC", Name: "Clark International Airport", Latitude: 15.1869, Longitude: 120.5604},
}
