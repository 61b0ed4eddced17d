package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Source identifies the feed a record came from.
type Source string

const (
	SourceUrbanas Source = "urbanas"
	SourceM30     Source = "m30"
	SourceRadares Source = "radares"
	SourceDGT     Source = "dgt"
)

// Sources lists every feed in aggregation order.
var Sources = []Source{SourceUrbanas, SourceM30, SourceRadares, SourceDGT}

// ParseSource validates a source tag.
func ParseSource(s string) (Source, error) {
	for _, src := range Sources {
		if string(src) == s {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown source %q", s)
}

// Kind discriminates cameras from radars.
type Kind string

const (
	KindCamera Kind = "camera"
	KindRadar  Kind = "radar"
)

// ParseKind validates a record kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCamera, KindRadar:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

// Record is the normalized camera or radar entity served to the map UI.
type Record struct {
	ID          string
	Name        string
	Description string
	Latitude    float64
	Longitude   float64
	ImageURL    string
	Source      Source
	Kind        Kind

	// Radar fields.
	RadarType string
	MaxSpeed  string
	Ubicacion string
	Carretera string
	Sentido   string

	// DGT road reference fields.
	RoadName        string
	RoadDestination string
	KilometerPoint  string
	Province        string
}

// HasFiniteCoordinates reports whether both axes are usable geometrically.
func (r Record) HasFiniteCoordinates() bool {
	return isFinite(r.Latitude) && isFinite(r.Longitude)
}

// recordJSON is the wire form. Coordinates are pointers so non-finite values
// encode as null; encoding/json refuses NaN.
type recordJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ImageURL    string   `json:"imageUrl"`
	Source      Source   `json:"source"`
	Kind        Kind     `json:"type"`

	RadarType string `json:"radarType,omitempty"`
	MaxSpeed  string `json:"maxSpeed,omitempty"`
	Ubicacion string `json:"ubicacion,omitempty"`
	Carretera string `json:"carretera,omitempty"`
	Sentido   string `json:"sentido,omitempty"`

	RoadName        string `json:"roadName,omitempty"`
	RoadDestination string `json:"roadDestination,omitempty"`
	KilometerPoint  string `json:"kilometerPoint,omitempty"`
	Province        string `json:"province,omitempty"`
}

// MarshalJSON encodes the record, writing null for non-finite coordinates.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Latitude:        finiteOrNil(r.Latitude),
		Longitude:       finiteOrNil(r.Longitude),
		ImageURL:        r.ImageURL,
		Source:          r.Source,
		Kind:            r.Kind,
		RadarType:       r.RadarType,
		MaxSpeed:        r.MaxSpeed,
		Ubicacion:       r.Ubicacion,
		Carretera:       r.Carretera,
		Sentido:         r.Sentido,
		RoadName:        r.RoadName,
		RoadDestination: r.RoadDestination,
		KilometerPoint:  r.KilometerPoint,
		Province:        r.Province,
	})
}

// UnmarshalJSON decodes the wire form; null coordinates become NaN.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Record{
		ID:              w.ID,
		Name:            w.Name,
		Description:     w.Description,
		Latitude:        nilToNaN(w.Latitude),
		Longitude:       nilToNaN(w.Longitude),
		ImageURL:        w.ImageURL,
		Source:          w.Source,
		Kind:            w.Kind,
		RadarType:       w.RadarType,
		MaxSpeed:        w.MaxSpeed,
		Ubicacion:       w.Ubicacion,
		Carretera:       w.Carretera,
		Sentido:         w.Sentido,
		RoadName:        w.RoadName,
		RoadDestination: w.RoadDestination,
		KilometerPoint:  w.KilometerPoint,
		Province:        w.Province,
	}
	return nil
}

func finiteOrNil(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func nilToNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FilterState maps each source to its visibility on the map.
type FilterState map[Source]bool

// AllVisible returns a FilterState with every source shown.
func AllVisible() FilterState {
	f := make(FilterState, len(Sources))
	for _, s := range Sources {
		f[s] = true
	}
	return f
}

// Visible reports whether records from src should be shown.
func (f FilterState) Visible(src Source) bool {
	return f[src]
}
