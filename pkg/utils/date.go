package utils

import (
	"time"
	_ "time/tzdata"
)

// DefaultTimeZone is used when no location is configured.
const DefaultTimeZone = "Asia/Bangkok"

// GetLocation loads the named location, falling back to UTC.
func GetLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
