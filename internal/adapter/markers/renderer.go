// Package markers renders the SVG map pins the browser UI places for each
// record, one design per source and kind.
package markers

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/traffic-cams-service/internal/domain"
	"github.com/couchcryptid/traffic-cams-service/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ContentType is the media type of rendered markers.
const ContentType = "image/svg+xml"

// ErrUnknownMarker is returned for a source or kind with no marker design.
var ErrUnknownMarker = errors.New("unknown marker")

var sourceColors = map[domain.Source]string{
	domain.SourceUrbanas: "#10b981",
	domain.SourceM30:     "#f59e0b",
	domain.SourceRadares: "#ef4444",
	domain.SourceDGT:     "#3b82f6",
}

const pinTemplate = `<svg width="25" height="41" viewBox="0 0 25 41" xmlns="http://www.w3.org/2000/svg">` +
	`<path d="M12.5 0C5.596 0 0 5.596 0 12.5c0 9.375 12.5 28.125 12.5 28.125S25 21.875 25 12.5C25 5.596 19.404 0 12.5 0z" fill="%[1]s"/>` +
	`<circle cx="12.5" cy="12.5" r="6" fill="white"/>%[2]s</svg>`

const radarGlyph = `<text x="12.5" y="15" text-anchor="middle" fill="%s" font-size="10" font-weight="bold">R</text>`

type markerKey struct {
	source domain.Source
	kind   domain.Kind
}

// Renderer renders marker icons and memoizes them in a bounded LRU cache
// owned by the instance. Safe for concurrent use.
type Renderer struct {
	cache   *lru.Cache[markerKey, []byte]
	metrics *observability.Metrics
}

// NewRenderer creates a Renderer caching up to size icons.
func NewRenderer(size int, metrics *observability.Metrics) (*Renderer, error) {
	cache, err := lru.New[markerKey, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create marker cache: %w", err)
	}
	return &Renderer{cache: cache, metrics: metrics}, nil
}

// Render returns the SVG pin for a source and kind. Callers must not modify
// the returned slice.
func (r *Renderer) Render(src domain.Source, kind domain.Kind) ([]byte, error) {
	key := markerKey{source: src, kind: kind}
	if svg, ok := r.cache.Get(key); ok {
		r.metrics.MarkerCache.WithLabelValues("hit").Inc()
		return svg, nil
	}
	r.metrics.MarkerCache.WithLabelValues("miss").Inc()

	svg, err := render(src, kind)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, svg)
	return svg, nil
}

// Len reports how many icons are cached.
func (r *Renderer) Len() int { return r.cache.Len() }

func render(src domain.Source, kind domain.Kind) ([]byte, error) {
	color, ok := sourceColors[src]
	if !ok {
		return nil, fmt.Errorf("%w: source %q", ErrUnknownMarker, src)
	}

	var glyph string
	switch kind {
	case domain.KindCamera:
	case domain.KindRadar:
		glyph = fmt.Sprintf(radarGlyph, color)
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnknownMarker, kind)
	}
	return []byte(fmt.Sprintf(pinTemplate, color, glyph)), nil
}
