package utils

import (
	"fmt"
	"math"
	"time"
)

// RegionLocation returns a fixed zone for a UTC offset given in hours (fractions allowed)
func RegionLocation(offsetHours float64) *time.Location {
	seconds := int(math.Round(offsetHours * 3600))
	sign := "+"
	if seconds < 0 {
		sign = "-"
	}
	abs := seconds
	if abs < 0 {
		abs = -abs
	}
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, abs/3600, (abs%3600)/60)
	return time.FixedZone(name, seconds)
}

// CadenceSlot truncates t to the start of its cadence slot within the hour
func CadenceSlot(t time.Time, cadence time.Duration) time.Time {
	if cadence <= 0 {
		return t.Truncate(time.Minute)
	}
	hour := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return hour.Add(t.Sub(hour) / cadence * cadence)
}
