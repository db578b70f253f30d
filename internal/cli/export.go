// export.go implements the "mapserver export" command, which writes the
// valid entities of a map as GeoJSON or WKT for viewing in GIS tools.

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/mapserver/internal/geometry"
	"github.com/mmr-tortoise/mapserver/internal/logger"
	"github.com/mmr-tortoise/mapserver/internal/mapstore"
	"github.com/mmr-tortoise/mapserver/internal/model"
)

// Export formats.
const (
	exportGeoJSON = "geojson"
	exportWKT     = "wkt"
)

// exportFlags holds the flag values for the export command.
type exportFlags struct {
	// format is "geojson" (default) or "wkt".
	format string
}

// NewExportCommand creates the "export" cobra command.
func NewExportCommand() *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the map as GeoJSON or WKT",
		Long: `Write the valid polygons and markings of a map to stdout.

GeoJSON output is a FeatureCollection; polygons carry their file index and
policy, markings carry their id. WKT output is one labelled geometry per
line. Coordinates are grid units, not longitude and latitude.

Examples:
  mapserver export --map warehouse.db > warehouse.geojson
  mapserver export --map warehouse.db --format wkt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", exportGeoJSON, "Output format: geojson, wkt")

	return cmd
}

func runExport(out io.Writer, flags *exportFlags) error {
	if flags.format != exportGeoJSON && flags.format != exportWKT {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid format %q: valid values are geojson, wkt", flags.format))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, _, err := loadMap(cfg, logger.Discard())
	if err != nil {
		return err
	}

	return writeExport(out, m, flags.format)
}

// writeExport renders m in the given format.
func writeExport(out io.Writer, m *mapstore.Map, format string) error {
	polys, marks := m.Polygons(), m.Markings()

	if format == exportWKT {
		for _, line := range geometry.WKT(polys, marks) {
			fmt.Fprintln(out, line)
		}
		return nil
	}
	return printJSON(out, geometry.FeatureCollection(polys, marks))
}
