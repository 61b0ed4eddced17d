package feed

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/traffic-cams-service/internal/domain"
)

// DecodeKML reads placemarks from a KML document, directly under Document or
// nested in Folders. Every placemark must carry a Point with a "lon,lat[,alt]"
// coordinate string.
func DecodeKML(data []byte) ([]domain.RawRecord, error) {
	root, err := parseTree(data)
	if err != nil {
		return nil, fmt.Errorf("decode kml: %w", err)
	}

	doc := root.find("Document")
	if doc == nil {
		return nil, fmt.Errorf("decode kml: %w", ErrNoFeatures)
	}
	placemarks := collectPlacemarks(doc, nil)
	if len(placemarks) == 0 {
		return nil, fmt.Errorf("decode kml: %w", ErrNoFeatures)
	}

	records := make([]domain.RawRecord, 0, len(placemarks))
	for i, pm := range placemarks {
		fields, err := placemarkFields(pm)
		if err != nil {
			return nil, fmt.Errorf("decode kml: placemark %d: %w", i+1, err)
		}
		records = append(records, domain.RawRecord{
			Shape:  domain.ShapeKML,
			Fields: fields,
			Line:   i + 1,
		})
	}
	return records, nil
}

func collectPlacemarks(container *element, out []*element) []*element {
	for _, c := range container.children {
		switch c.name {
		case "Placemark":
			out = append(out, c)
		case "Folder", "Document":
			out = collectPlacemarks(c, out)
		}
	}
	return out
}

func placemarkFields(pm *element) (map[string]string, error) {
	point := pm.find("Point")
	if point == nil || point.child("coordinates") == nil {
		return nil, ErrMalformedPoint
	}
	coords := point.child("coordinates").Text()
	lon, rest, ok := strings.Cut(coords, ",")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedPoint, coords)
	}
	lat, _, _ := strings.Cut(rest, ",")

	fields := map[string]string{
		"lon": strings.TrimSpace(lon),
		"lat": strings.TrimSpace(lat),
	}
	if name := pm.child("name"); name != nil {
		fields["name"] = name.Text()
	}
	if desc := pm.child("description"); desc != nil {
		fields["description"] = desc.Text()
	}
	if ext := pm.child("ExtendedData"); ext != nil {
		extendedData(ext, fields)
	}
	return fields, nil
}

// extendedData collects both KML extended data forms as "ext.<name>":
// <Data name="x"><value>v</value></Data> and
// <SchemaData><SimpleData name="x">v</SimpleData></SchemaData>.
func extendedData(ext *element, fields map[string]string) {
	for _, d := range ext.childrenNamed("Data") {
		name := d.attrs["name"]
		if name == "" {
			continue
		}
		if v := d.childFold("value"); v != nil {
			setFirst(fields, "ext."+name, v.Text())
		}
	}
	for _, schema := range ext.childrenNamed("SchemaData") {
		for _, sd := range schema.childrenNamed("SimpleData") {
			if name := sd.attrs["name"]; name != "" {
				setFirst(fields, "ext."+name, sd.Text())
			}
		}
	}
}
