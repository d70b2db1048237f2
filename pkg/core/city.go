package core

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// CoordinateThreshold is the per-axis proximity below which two cities are
// considered the same place. 0.001 degrees is roughly 100 meters.
const CoordinateThreshold = 0.001

// City represents one located place returned by a search backend.
//
// Cities are created by a Backend when translating a raw provider record and
// are owned by the Aggregator once accepted. Two providers frequently report
// the same place with different capitalization, formatting or slightly
// rounded coordinates; DuplicateOf encodes the matching policy used to
// collapse those.
type City struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// NewCity creates a city record.
func NewCity(name, displayName, country string, latitude, longitude float64) *City {
	return &City{
		Name:        name,
		DisplayName: displayName,
		Country:     country,
		Latitude:    latitude,
		Longitude:   longitude,
	}
}

// Valid reports whether the record carries the essential fields. Records
// missing name or display name come from partial provider responses and are
// dropped silently at aggregation time.
func (c *City) Valid() bool {
	if c == nil {
		return false
	}
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.DisplayName) != ""
}

// foldCase lowercases with full Unicode case folding so that comparisons
// behave the same for non-ASCII city names.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// Compare orders cities by (folded display name, country, latitude,
// longitude). The ordering is total, so sorting is deterministic regardless
// of insertion order.
func (c *City) Compare(other *City) int {
	if v := strings.Compare(foldCase(c.DisplayName), foldCase(other.DisplayName)); v != 0 {
		return v
	}
	if v := strings.Compare(c.Country, other.Country); v != 0 {
		return v
	}
	if c.Latitude != other.Latitude {
		if c.Latitude < other.Latitude {
			return -1
		}
		return 1
	}
	if c.Longitude != other.Longitude {
		if c.Longitude < other.Longitude {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether c sorts before other.
func (c *City) Less(other *City) bool {
	return c.Compare(other) < 0
}

// DuplicateOf reports whether c and other describe the same place. Any
// single tier matching is sufficient:
//
//  1. case-insensitive display name match
//  2. case-insensitive (name, country) match
//  3. both coordinate axes strictly within CoordinateThreshold
func (c *City) DuplicateOf(other *City) bool {
	if c == nil || other == nil {
		return false
	}
	if foldCase(c.DisplayName) == foldCase(other.DisplayName) {
		return true
	}
	if foldCase(c.Name) == foldCase(other.Name) && foldCase(c.Country) == foldCase(other.Country) {
		return true
	}
	return coordinatesClose(c.Latitude, c.Longitude, other.Latitude, other.Longitude)
}

// coordinatesClose requires both axes strictly under the threshold; a delta
// of exactly CoordinateThreshold is not a duplicate.
func coordinatesClose(lat1, lon1, lat2, lon2 float64) bool {
	latDiff := lat1 - lat2
	if latDiff < 0 {
		latDiff = -latDiff
	}
	lonDiff := lon1 - lon2
	if lonDiff < 0 {
		lonDiff = -lonDiff
	}
	return latDiff < CoordinateThreshold && lonDiff < CoordinateThreshold
}

func (c *City) String() string {
	return fmt.Sprintf("%s (%.4f, %.4f)", c.DisplayName, c.Latitude, c.Longitude)
}
