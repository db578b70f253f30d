// Package main is the entry point for the mapserver CLI.
//
// The binary answers geofencing queries (marking positions and forbidden
// positions) over a robot map file, either one-off or as an HTTP service.
// It delegates all functionality to the internal/cli package.
//
// Build-time variables (version, commit, date) are injected via ldflags.
// During development, they default to "dev", "none", and "unknown".
package main

import (
	"github.com/mmr-tortoise/mapserver/internal/cli"
)

// version, commit, and date are set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.2.0 -X main.commit=$(git rev-parse --short HEAD)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
