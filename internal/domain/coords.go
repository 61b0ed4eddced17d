package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseCoordinate parses a decimal degree value, returning NaN when the text
// is empty or not a number. Coercion gaps never fail a record.
func parseCoordinate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseDecimalComma is parseCoordinate for feeds that write "40,4168".
func parseDecimalComma(s string) float64 {
	return parseCoordinate(strings.Replace(s, ",", ".", 1))
}

// BoundingBox is an inclusive latitude/longitude rectangle.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the point lies inside the box. Non-finite points never do.
func (b BoundingBox) Contains(lat, lon float64) bool {
	if !isFinite(lat) || !isFinite(lon) {
		return false
	}
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// MadridRegion approximates the Comunidad de Madrid. DGT cameras outside it are discarded.
var MadridRegion = BoundingBox{MinLat: 39.5, MaxLat: 41.2, MinLon: -4.5, MaxLon: -3.0}

// CoordinatePolicy decides what happens to records with non-finite coordinates.
type CoordinatePolicy string

const (
	// PolicyDrop removes any record with a non-finite latitude or longitude.
	PolicyDrop CoordinatePolicy = "drop"
	// PolicyKeep passes such records through wherever the publisher's data did.
	PolicyKeep CoordinatePolicy = "keep"
)

// ParseCoordinatePolicy validates a policy name.
func ParseCoordinatePolicy(s string) (CoordinatePolicy, error) {
	switch CoordinatePolicy(s) {
	case PolicyDrop, PolicyKeep:
		return CoordinatePolicy(s), nil
	default:
		return "", fmt.Errorf("unknown coordinate policy %q", s)
	}
}

// DropReason explains why a normalizer discarded a raw record. Empty means kept.
type DropReason string

const (
	Kept              DropReason = ""
	DropNonFinite     DropReason = "non_finite"
	DropOutsideRegion DropReason = "outside_region"
	DropNotCamera     DropReason = "not_camera"
)
