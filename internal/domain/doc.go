// Package domain models the Alpe d'Huez fastest-ascent dataset used by the
// scatter plot.
//
// # Data Source
//
// Records originate from the freeCodeCamp project reference data
// (cyclist-data.json), a JSON array where each element describes one ascent:
//
//	{"Time":"36:50","Place":1,"Seconds":2210,"Name":"Marco Pantani",
//	 "Year":1995,"Nationality":"ITA","Doping":"Alleged drug use ...","URL":"https://..."}
//
// Only Time, Doping, Name, Nationality, URL and Year are read. Place and
// Seconds are ignored.
//
// # Field Conventions
//
// Time:
//
//	"MM:SS" ascent duration, both parts two digits in 00-59.
//	Parsed into a time-of-day on 1970-01-01 UTC so it can be compared,
//	scaled and formatted like any other time value. See [Epoch].
//
// Year:
//
//	Either a JSON number (1995) or a numeric string ("1995"). The raw form is
//	kept in [RawYear] because duplicate detection compares raw values.
//	A number is kept exactly as written, so 1995.0 or 1.995e3 is rejected as
//	a malformed year rather than read as 1995, and never equals 1995 when
//	looking for duplicates.
//
// Doping:
//
//	Free text, sometimes padded with whitespace. Empty means no allegation.
//	Only this field is trimmed.
//
// URL:
//
//	Optional link to a source for the allegation. Empty means no link.
//
// # Duplicate Years
//
// A record is flagged with IsDuplicateYear when the record immediately before
// it in input order has the same raw Year and the same raw Time string. The
// check is positional (index i against i-1 only) and happens before
// normalization. Renderers use the flag to nudge the point sideways so two
// identical ascents do not overlap.
package domain
