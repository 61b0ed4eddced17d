package domain

// Column positions in the semicolon layout.
const (
	semiID         = 0
	semiUbicacion  = 1
	semiCarretera  = 2
	semiSentido    = 5
	semiRadarType  = 6
	semiProjectedX = 10
	semiProjectedY = 11
	semiLongitude  = 12
	semiLatitude   = 13
	semiMaxSpeed   = 14
)

func normalizeRadar(raw RawRecord) (Record, DropReason, error) {
	switch raw.Shape {
	case ShapeRadarComma:
		return radarFromComma(raw), Kept, nil
	case ShapeRadarSemicolon:
		rec, ok := radarFromSemicolon(raw)
		if !ok {
			return Record{}, DropNonFinite, nil
		}
		return rec, Kept, nil
	default:
		return Record{}, Kept, unexpectedShape(SourceRadares, raw.Shape)
	}
}

// radarFromComma reads the six-column layout:
// id, radarType, name, latitude, longitude, maxSpeed.
func radarFromComma(raw RawRecord) Record {
	radarType := raw.Column(1)
	maxSpeed := raw.Column(5)
	name := firstNonEmpty(raw.Column(2), defaultRadarName)
	lat := parseCoordinate(raw.Column(3))
	lon := parseCoordinate(raw.Column(4))

	id := raw.Column(0)
	if id == "" {
		id = SynthesizeID("radar_", name, lat, lon, raw.Line)
	}

	return Record{
		ID:          id,
		Name:        name,
		Description: joinNonEmpty(" - ", radarType, speedText(maxSpeed)),
		Latitude:    lat,
		Longitude:   lon,
		Source:      SourceRadares,
		Kind:        KindRadar,
		RadarType:   radarType,
		MaxSpeed:    maxSpeed,
	}
}

// radarFromSemicolon reads the wide layout. The WGS84 pair is preferred and
// the projected pair is the fallback; ok is false when neither parses.
func radarFromSemicolon(raw RawRecord) (Record, bool) {
	lon := parseDecimalComma(raw.Column(semiLongitude))
	lat := parseDecimalComma(raw.Column(semiLatitude))
	if !isFinite(lat) || !isFinite(lon) {
		lon = parseDecimalComma(raw.Column(semiProjectedX))
		lat = parseDecimalComma(raw.Column(semiProjectedY))
	}
	if !isFinite(lat) || !isFinite(lon) {
		return Record{}, false
	}

	ubicacion := raw.Column(semiUbicacion)
	carretera := raw.Column(semiCarretera)
	sentido := raw.Column(semiSentido)
	radarType := raw.Column(semiRadarType)
	maxSpeed := raw.Column(semiMaxSpeed)
	name := firstNonEmpty(ubicacion, defaultRadarName)

	id := raw.Column(semiID)
	if id == "" {
		id = SynthesizeID("radar_", name, lat, lon, raw.Line)
	}

	road := carretera
	if sentido != "" {
		road = joinNonEmpty(" ", carretera, "("+sentido+")")
	}

	return Record{
		ID:          id,
		Name:        name,
		Description: joinNonEmpty(" - ", road, radarType, speedText(maxSpeed)),
		Latitude:    lat,
		Longitude:   lon,
		Source:      SourceRadares,
		Kind:        KindRadar,
		RadarType:   radarType,
		MaxSpeed:    maxSpeed,
		Ubicacion:   ubicacion,
		Carretera:   carretera,
		Sentido:     sentido,
	}, true
}

func speedText(maxSpeed string) string {
	if maxSpeed == "" {
		return ""
	}
	return "max speed " + maxSpeed + " km/h"
}
