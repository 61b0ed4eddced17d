package feed

import (
	"fmt"

	"github.com/couchcryptid/traffic-cams-service/internal/domain"
)

// DecodeM30 reads the Calle 30 camera catalog. The revision is chosen from
// the root element: Camaras/Cameras holds Camara/Camera items with nested
// Posicion/Position, lowercase cameras holds flat camera items.
func DecodeM30(data []byte) ([]domain.RawRecord, error) {
	root, err := parseTree(data)
	if err != nil {
		return nil, fmt.Errorf("decode m30: %w", err)
	}

	var shape domain.Shape
	var items []*element
	switch root.name {
	case "Camaras", "Cameras":
		shape = domain.ShapeM30Catalog
		items = root.childrenNamed("Camara", "Camera")
	case "cameras":
		shape = domain.ShapeM30Flat
		items = root.childrenNamed("camera")
	default:
		return nil, fmt.Errorf("decode m30: %w: root element %q", ErrUnknownShape, root.name)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("decode m30: %w", ErrNoFeatures)
	}

	records := make([]domain.RawRecord, 0, len(items))
	for i, item := range items {
		records = append(records, domain.RawRecord{
			Shape:  shape,
			Fields: item.flatten(),
			Line:   i + 1,
		})
	}
	return records, nil
}
