package feed

import (
	"fmt"

	"github.com/couchcryptid/traffic-cams-service/internal/domain"
)

// DecodeDATEX reads the device publication of a DATEX II v3 document. The
// payload may be the root or wrapped in a message envelope. Devices are
// flattened by local-name path with the device id at "@id".
func DecodeDATEX(data []byte) ([]domain.RawRecord, error) {
	root, err := parseTree(data)
	if err != nil {
		return nil, fmt.Errorf("decode datex2: %w", err)
	}

	payload := root.find("payload")
	if payload == nil {
		return nil, fmt.Errorf("decode datex2: %w", ErrNoFeatures)
	}

	devices := payload.childrenNamed("device")
	records := make([]domain.RawRecord, 0, len(devices))
	for i, d := range devices {
		records = append(records, domain.RawRecord{
			Shape:  domain.ShapeDATEX,
			Fields: d.flatten(),
			Line:   i + 1,
		})
	}
	return records, nil
}
