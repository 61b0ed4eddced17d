// Package domain models the traffic camera and speed radar records published by
// the Madrid open-data portals and the national DGT feed.
//
// # Data Sources
//
// Four feeds are normalized into one [Record] shape. Each is a static file
// downloaded from its publisher and re-read on every request:
//
//	urbanas  Ayuntamiento de Madrid urban cameras, KML placemarks.
//	m30      Calle 30 ring-road cameras, XML catalog (two revisions).
//	radares  Fixed and mobile speed radars, delimited text (two layouts).
//	dgt      DGT national camera inventory, DATEX II v3 device publication.
//
// # Feed Conventions
//
// Coordinates:
//
//	KML "lon,lat[,alt]"  →  "-3.7038,40.4168,0" is longitude -3.7038, latitude 40.4168.
//	The semicolon radar layout stores WGS84 in columns 12/13 and the publisher's
//	projected X/Y in 10/11; the projected pair is only read when the WGS84 pair
//	is empty or unparseable. Decimal commas ("40,4168") are accepted there.
//
// Identifiers:
//
//	urbanas  ExtendedData "Numero" (revision 1) or "id" (revision 2).
//	m30      camera name (catalog revision) or "id" element (flat revision).
//	radares  first column.
//	dgt      device "id" attribute, prefixed "dgt_".
//
// Missing identifiers are synthesized from the record's name, coordinates and
// feed position, so repeated reads of an unchanged file yield the same IDs.
// See [SynthesizeID].
//
// Speed limits:
//
//	Left as the publisher's text ("50", "70 km/h"); never parsed.
//
// # Coordinate Policy
//
// Under [PolicyDrop] (default) every normalizer drops records whose latitude
// or longitude is not finite. [PolicyKeep] reproduces the publishers' raw
// behaviour: camera rows and comma-layout radar rows pass through with NaN
// coordinates (serialized as JSON null), while semicolon-layout radar rows
// are dropped only when both coordinate pairs fail.
//
// # DGT Geofence
//
// The national feed covers all of Spain. Only cameras inside [MadridRegion]
// (latitude 39.5–41.2, longitude -4.5 to -3.0) are kept.
package domain
