package domain

import "strings"

// Flattened DATEX II paths, relative to a payload/device element. Namespace
// prefixes (ns2:, loc:, lse:, fse:) are dropped by the decoder.
const (
	dgtIDAttr          = "@id"
	dgtTypeOfDevice    = "typeOfDevice"
	dgtDeviceURL       = "deviceUrl"
	dgtCoordinates     = "pointLocation.tpegPointLocation.point.pointCoordinates"
	dgtRoadInformation = "pointLocation.supplementaryPositionalDescription.roadInformation"
	dgtPointExtension  = "pointLocation.tpegPointLocation.point._tpegNonJunctionPointExtension.extendedTpegNonJunctionPoint"
)

// dgtPath reads a nested DATEX II value, yielding "" when any step is missing.
func dgtPath(raw RawRecord, base, leaf string) string {
	return raw.Get(base + "." + leaf)
}

func normalizeDGT(raw RawRecord) (Record, DropReason, error) {
	if raw.Shape != ShapeDATEX {
		return Record{}, Kept, unexpectedShape(SourceDGT, raw.Shape)
	}
	if raw.Get(dgtTypeOfDevice) != "camera" {
		return Record{}, DropNotCamera, nil
	}

	lat := parseCoordinate(dgtPath(raw, dgtCoordinates, "latitude"))
	lon := parseCoordinate(dgtPath(raw, dgtCoordinates, "longitude"))
	if !MadridRegion.Contains(lat, lon) {
		return Record{}, DropOutsideRegion, nil
	}

	roadName := dgtPath(raw, dgtRoadInformation, "roadName")
	destination := dgtPath(raw, dgtRoadInformation, "roadDestination")
	km := dgtPath(raw, dgtPointExtension, "kilometerPoint")
	province := dgtPath(raw, dgtPointExtension, "province")

	id := "dgt_" + raw.Get(dgtIDAttr)
	if id == "dgt_" {
		id = SynthesizeID("dgt_", roadName+km, lat, lon, raw.Line)
	}

	name := roadName
	if km != "" {
		name = roadName + " PK " + km
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultCameraName + " " + id
	}

	road := roadName
	if destination != "" {
		road = joinNonEmpty(" towards ", roadName, destination)
	}

	return Record{
		ID:              id,
		Name:            name,
		Description:     joinNonEmpty(" - ", road, province),
		Latitude:        lat,
		Longitude:       lon,
		ImageURL:        raw.Get(dgtDeviceURL),
		Source:          SourceDGT,
		Kind:            KindCamera,
		RoadName:        roadName,
		RoadDestination: destination,
		KilometerPoint:  km,
		Province:        province,
	}, Kept, nil
}
