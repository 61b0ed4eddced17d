package domain

import (
	"strconv"
	"strings"
)

// Shape identifies the feed revision or column layout a raw record was decoded from.
type Shape string

const (
	ShapeKML            Shape = "kml"
	ShapeM30Catalog     Shape = "m30-catalog"
	ShapeM30Flat        Shape = "m30-flat"
	ShapeRadarComma     Shape = "radar-comma"
	ShapeRadarSemicolon Shape = "radar-semicolon"
	ShapeDATEX          Shape = "datex2"
)

// RawRecord is one feature as produced by a decoder: a flat map of the feed's
// own field names, tagged with the shape that produced it.
//
// XML decoders key fields by dotted local-name path relative to the feature
// element ("Posicion.Latitud"), attributes with an "@" prefix ("@id").
// Delimited decoders key fields by zero-based column index ("0", "1", ...).
type RawRecord struct {
	Shape  Shape
	Fields map[string]string
	Line   int // 1-based position of the feature within its feed
}

// Get returns the first non-empty trimmed value among keys, or "".
func (r RawRecord) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r.Fields[k]); v != "" {
			return v
		}
	}
	return ""
}

// Column returns the trimmed value of a delimited column, or "" when the row is short.
func (r RawRecord) Column(i int) string {
	return r.Get(strconv.Itoa(i))
}
