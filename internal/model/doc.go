// Package model defines the domain types and value objects for the
// mapserver.
//
// This package contains pure data structures with no external dependencies.
// Nodes, polygons and markings are created while a map file is parsed and
// are read-only afterwards; failed parses are represented by invalid
// entities (see InvalidPolygon and InvalidMarking) rather than by absence.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
