// forbidden.go implements the "mapserver forbidden" command.
//
// The forbidden command prints "true" when a position is forbidden by the
// map and "false" otherwise. With --explain it also names the polygon that
// forbids the position.

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/mapserver/internal/mapstore"
)

// forbiddenFlags holds the flag values for the forbidden command.
type forbiddenFlags struct {
	// explain prints which polygon forbids the position.
	explain bool
}

// NewForbiddenCommand creates the "forbidden" cobra command.
func NewForbiddenCommand() *cobra.Command {
	flags := &forbiddenFlags{}

	cmd := &cobra.Command{
		Use:   "forbidden <x> <y>",
		Short: "Check whether a position is forbidden",
		Long: `Check whether position (x,y) is forbidden by the map.

Polygons are checked in file order. The position is forbidden by the first
polygon whose policy disagrees with containment: an allowed-inside polygon
forbids points outside it, and an allowed-outside polygon forbids points
inside it.

Negative coordinates must follow "--" so they are not read as flags.

Examples:
  mapserver forbidden 12 8 --map warehouse.db
  mapserver forbidden --explain -- -3 4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForbidden(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], args[1], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.explain, "explain", false, "Show which polygon forbids the position")

	return cmd
}

// forbiddenResultJSON is the JSON output of the forbidden command.
// Polygon and Policy are set only when the position is forbidden.
type forbiddenResultJSON struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Forbidden bool   `json:"forbidden"`
	Polygon   *int   `json:"polygon"`
	Policy    string `json:"policy,omitempty"`
}

func runForbidden(out, errOut io.Writer, rawX, rawY string, flags *forbiddenFlags) error {
	x, err := parseIntArg("x", rawX)
	if err != nil {
		return err
	}
	y, err := parseIntArg("y", rawY)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(errOut, cfg)
	if err != nil {
		return err
	}
	m, _, err := loadMap(cfg, log)
	if err != nil {
		return err
	}

	result := checkForbidden(m, x, y)
	if IsJSONOutput() {
		return printJSON(out, result)
	}
	fmt.Fprintln(out, formatForbidden(result, flags.explain))
	return nil
}

// checkForbidden evaluates (x, y) against m in the shape printed by the
// command.
func checkForbidden(m *mapstore.Map, x, y int) forbiddenResultJSON {
	result := forbiddenResultJSON{X: x, Y: y}
	idx, forbidden := m.ForbiddingPolygon(x, y)
	if !forbidden {
		return result
	}
	result.Forbidden = true
	result.Polygon = &idx
	if poly, ok := m.Polygon(idx); ok {
		result.Policy = poly.Policy()
	}
	return result
}

// formatForbidden renders a result as text.
//
//	true
//	true (polygon 1, allowed-outside)   with explain
//	false
func formatForbidden(r forbiddenResultJSON, explain bool) string {
	if !r.Forbidden || !explain || r.Polygon == nil {
		return fmt.Sprintf("%t", r.Forbidden)
	}
	return fmt.Sprintf("true (polygon %d, %s)", *r.Polygon, r.Policy)
}
