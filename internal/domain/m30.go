package domain

import (
	"path"
	"strings"
)

func normalizeM30(raw RawRecord) (Record, DropReason, error) {
	switch raw.Shape {
	case ShapeM30Catalog:
		return m30FromCatalog(raw), Kept, nil
	case ShapeM30Flat:
		return m30FromFlat(raw), Kept, nil
	default:
		return Record{}, Kept, unexpectedShape(SourceM30, raw.Shape)
	}
}

// m30FromCatalog reads the Camaras/Camara revision. The publisher has shipped
// it with both Spanish and English element names.
func m30FromCatalog(raw RawRecord) Record {
	name := raw.Get("Nombre", "Name")
	lat := parseCoordinate(raw.Get("Posicion.Latitud", "Position.Latitude"))
	lon := parseCoordinate(raw.Get("Posicion.Longitud", "Position.Longitude"))

	id := name
	if id == "" {
		id = SynthesizeID("cam_m30_", name, lat, lon, raw.Line)
	}

	return Record{
		ID:          id,
		Name:        firstNonEmpty(name, defaultCameraName),
		Description: stripJPG(raw.Get("Fichero", "File")),
		Latitude:    lat,
		Longitude:   lon,
		ImageURL:    absoluteURL(raw.Get("URL")),
		Source:      SourceM30,
		Kind:        KindCamera,
	}
}

// m30FromFlat reads the lowercase cameras/camera revision.
func m30FromFlat(raw RawRecord) Record {
	name := raw.Get("name")
	lat := parseCoordinate(raw.Get("latitude"))
	lon := parseCoordinate(raw.Get("longitude"))
	image := raw.Get("image")

	id := raw.Get("id")
	if id == "" {
		id = SynthesizeID("cam_m30_", name, lat, lon, raw.Line)
	}

	description := raw.Get("description")
	if description == "" && image != "" {
		description = stripJPG(fileName(image))
	}

	return Record{
		ID:          id,
		Name:        firstNonEmpty(name, defaultCameraName),
		Description: description,
		Latitude:    lat,
		Longitude:   lon,
		ImageURL:    absoluteURL(image),
		Source:      SourceM30,
		Kind:        KindCamera,
	}
}

// absoluteURL prefixes scheme-relative catalog URLs ("informo.madrid.es/...")
// with https. Values that already carry a scheme are returned unchanged.
func absoluteURL(u string) string {
	if u == "" || strings.Contains(u, "://") {
		return u
	}
	return "https://" + strings.TrimPrefix(u, "//")
}

func stripJPG(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".jpg") {
		return name[:len(name)-len(".jpg")]
	}
	return name
}

// fileName returns the last path segment of a URL or path, without query string.
func fileName(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return path.Base(u)
}
