package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedShape is returned when a normalizer receives a raw record from
// a decoder it does not understand.
var ErrUnexpectedShape = errors.New("unexpected feed shape")

const (
	defaultCameraName = "Camera"
	defaultRadarName  = "Radar"
)

// NormalizeFunc maps one raw record to a Record. A non-empty DropReason
// discards the record; an error means the raw record has a shape the source
// never produces.
type NormalizeFunc func(raw RawRecord) (Record, DropReason, error)

// NormalizerFor returns the normalizer for a source.
func NormalizerFor(src Source) (NormalizeFunc, error) {
	switch src {
	case SourceUrbanas:
		return normalizeUrbanas, nil
	case SourceM30:
		return normalizeM30, nil
	case SourceRadares:
		return normalizeRadar, nil
	case SourceDGT:
		return normalizeDGT, nil
	default:
		return nil, fmt.Errorf("no normalizer for source %q", src)
	}
}

// Result is the output of normalizing one source.
type Result struct {
	Records []Record
	Dropped map[DropReason]int
}

// Normalize runs the source's normalizer over raws and applies the coordinate
// policy at the boundary. Records is never nil so an empty source encodes as [].
func Normalize(src Source, raws []RawRecord, policy CoordinatePolicy) (Result, error) {
	fn, err := NormalizerFor(src)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Records: make([]Record, 0, len(raws)),
		Dropped: make(map[DropReason]int),
	}
	for _, raw := range raws {
		rec, reason, err := fn(raw)
		if err != nil {
			return Result{}, fmt.Errorf("normalize %s line %d: %w", src, raw.Line, err)
		}
		if reason == Kept && policy != PolicyKeep && !rec.HasFiniteCoordinates() {
			reason = DropNonFinite
		}
		if reason != Kept {
			res.Dropped[reason]++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func unexpectedShape(src Source, shape Shape) error {
	return fmt.Errorf("%w %q for source %s", ErrUnexpectedShape, shape, src)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
