// check.go implements the "mapserver check" command.
//
// The check command parses a map file and reports what was loaded: entity
// counts, invalid entities, the bounding box of the valid entities and every
// recoverable issue with its line number. With --strict, any issue makes the
// command fail with ExitMapInvalid, which is useful before deploying a map.

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/mapserver/internal/geometry"
	"github.com/mmr-tortoise/mapserver/internal/logger"
	"github.com/mmr-tortoise/mapserver/internal/mapfile"
	"github.com/mmr-tortoise/mapserver/internal/mapstore"
	"github.com/mmr-tortoise/mapserver/internal/model"
)

// checkFlags holds the flag values for the check command.
type checkFlags struct {
	// strict turns any parse issue into a failure.
	strict bool
}

// NewCheckCommand creates the "check" cobra command.
func NewCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Parse a map file and report its contents and issues",
		Long: `Parse a map file and report its contents and issues.

Malformed polygons and markings do not stop parsing; they are kept as
invalid entities and listed as issues with their line numbers.

Examples:
  mapserver check --map warehouse.db
  mapserver check --map warehouse.db --strict --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Exit with code 3 if the map has any issue")

	return cmd
}

// checkReportJSON is the JSON output of the check command.
type checkReportJSON struct {
	Map             string          `json:"map"`
	Polygons        int             `json:"polygons"`
	InvalidPolygons int             `json:"invalidPolygons"`
	Markings        int             `json:"markings"`
	InvalidMarkings int             `json:"invalidMarkings"`
	Bounds          *boundsJSON     `json:"bounds"`
	Issues          []mapfile.Issue `json:"issues"`
}

// boundsJSON is the bounding box of the valid entities in grid units.
type boundsJSON struct {
	MinX int `json:"minX"`
	MinY int `json:"minY"`
	MaxX int `json:"maxX"`
	MaxY int `json:"maxY"`
}

func runCheck(out io.Writer, flags *checkFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Issues are part of the report, so the parser does not log them.
	m, res, err := loadMap(cfg, logger.Discard())
	if err != nil {
		return err
	}

	report := buildCheckReport(cfg.Map, m, res)
	if IsJSONOutput() {
		if err := printJSON(out, report); err != nil {
			return err
		}
	} else {
		printCheckReportText(out, report)
	}

	if flags.strict && len(report.Issues) > 0 {
		return model.NewCLIError(model.ExitMapInvalid,
			fmt.Sprintf("map %s has %d issue(s)", cfg.Map, len(report.Issues)))
	}
	return nil
}

// buildCheckReport summarizes a loaded map.
func buildCheckReport(path string, m *mapstore.Map, res *mapfile.Result) checkReportJSON {
	stats := m.Stats()
	report := checkReportJSON{
		Map:             path,
		Polygons:        stats.Polygons,
		InvalidPolygons: stats.InvalidPolygons,
		Markings:        stats.Markings,
		InvalidMarkings: stats.InvalidMarkings,
		// Empty slice so JSON shows [] instead of null.
		Issues: make([]mapfile.Issue, 0),
	}
	if res != nil {
		report.Issues = append(report.Issues, res.Issues...)
	}

	if b, ok := geometry.MapBound(m.Polygons(), m.Markings()); ok {
		report.Bounds = &boundsJSON{
			MinX: int(b.Min.X()),
			MinY: int(b.Min.Y()),
			MaxX: int(b.Max.X()),
			MaxY: int(b.Max.Y()),
		}
	}
	return report
}

// printCheckReportText outputs the report in a human-readable form:
//
//	Map:       warehouse.db
//	Polygons:  2 (0 invalid)
//	Markings:  2 (0 invalid)
//	Bounds:    0,0 .. 40,30
//	Issues:    none
func printCheckReportText(out io.Writer, r checkReportJSON) {
	fmt.Fprintf(out, "%-10s %s\n", "Map:", r.Map)
	fmt.Fprintf(out, "%-10s %d (%d invalid)\n", "Polygons:", r.Polygons, r.InvalidPolygons)
	fmt.Fprintf(out, "%-10s %d (%d invalid)\n", "Markings:", r.Markings, r.InvalidMarkings)
	if r.Bounds != nil {
		fmt.Fprintf(out, "%-10s %d,%d .. %d,%d\n", "Bounds:", r.Bounds.MinX, r.Bounds.MinY, r.Bounds.MaxX, r.Bounds.MaxY)
	} else {
		fmt.Fprintf(out, "%-10s -\n", "Bounds:")
	}

	if len(r.Issues) == 0 {
		fmt.Fprintf(out, "%-10s none\n", "Issues:")
		return
	}
	fmt.Fprintf(out, "%-10s %d\n", "Issues:", len(r.Issues))
	for i := range r.Issues {
		fmt.Fprintf(out, "  %s\n", r.Issues[i].Error())
	}
}
