// Package mapfile parses the line-oriented robot map format into
// polygons and markings.
//
// A map file looks like this (default literals):
//
//	# warehouse floor, grid units
//	POLYGON_START
//	ALLOWED_INSIDE
//	0,0
//	40,0
//	40,30
//	0,30
//	POLYGON_END
//	MARKING_START
//	1
//	5,5
//	MARKING_END
//
// Parsing is a single sequential pass. Failures are entity-scoped: a bad
// polygon node discards that whole polygon, a bad marking block produces
// the sentinel marking, and a stray top-level line is skipped. Every
// failure is reported as an Issue; none aborts the scan. Only a missing
// file (ErrMapNotFound) or a read error stops loading.
package mapfile
