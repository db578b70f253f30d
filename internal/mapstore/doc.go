// Package mapstore holds a loaded robot map and answers the two geofencing
// queries against it: where a named marking is, and whether a position is
// forbidden.
//
// A Map is built once from parsed entities and never changes afterwards, so
// any number of goroutines may query it without locking. Publish a Map only
// after it has been fully built.
package mapstore
