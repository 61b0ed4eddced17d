package domain

import "time"

// Snapshot is a point-in-time copy of normalized records, written by the
// snapshot and export commands.
type Snapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Count       int       `json:"count"`
	Records     []Record  `json:"records"`
}

// NewSnapshot stamps records with the current time from the package clock.
func NewSnapshot(records []Record) Snapshot {
	if records == nil {
		records = []Record{}
	}
	return Snapshot{
		GeneratedAt: clock.Now().UTC(),
		Count:       len(records),
		Records:     records,
	}
}
