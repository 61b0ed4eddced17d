package domain

import "regexp"

// imageSrcRe finds the camera snapshot inside the placemark's HTML description,
// e.g. `<img src=https://informo.madrid.es/cameras/Camara06304.jpg?v=1234>`.
var imageSrcRe = regexp.MustCompile(`(?i)src=["']?([^\s"'<>]+\.jpg[^\s"'<>]*)`)

// Raw field keys produced by the KML decoder.
const (
	kmlName        = "name"
	kmlDescription = "description"
	kmlLatitude    = "lat"
	kmlLongitude   = "lon"
)

func normalizeUrbanas(raw RawRecord) (Record, DropReason, error) {
	if raw.Shape != ShapeKML {
		return Record{}, Kept, unexpectedShape(SourceUrbanas, raw.Shape)
	}

	lat := parseCoordinate(raw.Get(kmlLatitude))
	lon := parseCoordinate(raw.Get(kmlLongitude))

	// Revision 1 publishes Numero/Nombre, revision 2 id/url.
	nombre := raw.Get("ext.Nombre")
	placemarkName := raw.Get(kmlName)

	name := firstNonEmpty(nombre, placemarkName, defaultCameraName)
	id := raw.Get("ext.Numero", "ext.id")
	if id == "" {
		id = SynthesizeID("cam_urb_", name, lat, lon, raw.Line)
	}

	imageURL := extractImageURL(raw.Fields[kmlDescription])
	if imageURL == "" {
		imageURL = raw.Get("ext.url")
	}

	return Record{
		ID:          id,
		Name:        name,
		Description: firstNonEmpty(nombre, placemarkName),
		Latitude:    lat,
		Longitude:   lon,
		ImageURL:    imageURL,
		Source:      SourceUrbanas,
		Kind:        KindCamera,
	}, Kept, nil
}

// extractImageURL returns the first .jpg src reference in an HTML fragment, or "".
func extractImageURL(description string) string {
	m := imageSrcRe.FindStringSubmatch(description)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}
