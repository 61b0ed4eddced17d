package feed

import "errors"

var (
	// ErrNoFeatures means the document has no feature collection at the expected place.
	ErrNoFeatures = errors.New("no features found")
	// ErrUnknownShape means the document root matches no known feed revision.
	ErrUnknownShape = errors.New("unknown document shape")
	// ErrMalformedPoint means a KML point has no "lon,lat" coordinate pair.
	ErrMalformedPoint = errors.New("malformed point coordinates")
)
