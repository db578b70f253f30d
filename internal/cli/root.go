// Package cli implements the cobra-based CLI commands for mapserver.
//
// Each subcommand (serve, lookup, forbidden, check, export) is defined in
// its own file within this package. This file defines the root command that
// serves as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/mapserver/internal/config"
	"github.com/mmr-tortoise/mapserver/internal/logger"
	"github.com/mmr-tortoise/mapserver/internal/mapfile"
	"github.com/mmr-tortoise/mapserver/internal/mapstore"
	"github.com/mmr-tortoise/mapserver/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose enables [verbose] trace lines on stderr and raises the log
	// level to debug.
	verbose bool

	// configPath is the optional YAML or JSONC config file.
	configPath string

	// mapPath overrides the map file from the config file and environment.
	mapPath string
)

// Version, Commit, and Date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action; it only provides
// help text and global flags. Actual functionality is provided by
// subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mapserver",
		Short: "Geofencing queries over a robot map file",
		Long: `mapserver loads a robot map file (polygons with an allowed-inside or
allowed-outside policy, plus named markings) and answers two questions:
where is marking K, and is position (x,y) forbidden.

Queries can be run one-off from the command line or served over HTTP.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// Errors are formatted by Execute (text or JSON based on --json).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.yaml, .yml, .json, .jsonc)")
	rootCmd.PersistentFlags().StringVarP(&mapPath, "map", "m", "", "Map file (overrides config and MAPSERVER_MAP)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewLookupCommand())
	rootCmd.AddCommand(NewForbiddenCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewExportCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError types carry their own exit codes; other errors default to
// exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag. Errors always go to
// stderr because stdout is reserved for command output.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// loadConfig loads the configuration from --config, .env and the
// environment, applies --map, and validates the result.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, model.WrapCLIError(model.ExitConfigError, "failed to load configuration", err)
	}
	if mapPath != "" {
		cfg.Map = mapPath
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, model.WrapCLIError(model.ExitConfigError, "invalid configuration", err)
	}
	VerboseLog("Using map file %s", cfg.Map)
	return cfg, nil
}

// newLogger builds the command logger on w from the configured level and
// format. The config must have been validated.
func newLogger(w io.Writer, cfg config.Config) (*slog.Logger, error) {
	l, err := logger.New(w, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "invalid logging configuration", err)
	}
	return l, nil
}

// loadMap parses the configured map file. A missing file maps to
// ExitMapNotFound.
func loadMap(cfg config.Config, log *slog.Logger) (*mapstore.Map, *mapfile.Result, error) {
	g, err := cfg.MapGrammar()
	if err != nil {
		return nil, nil, model.WrapCLIError(model.ExitConfigError, "invalid grammar configuration", err)
	}

	m, res, err := mapstore.Load(cfg.Map, mapfile.WithGrammar(g), mapfile.WithLogger(log))
	if err != nil {
		if errors.Is(err, mapfile.ErrMapNotFound) {
			return nil, nil, model.WrapCLIError(model.ExitMapNotFound,
				fmt.Sprintf("map file not found: %s", cfg.Map), err)
		}
		return nil, nil, model.WrapCLIError(model.ExitGeneralError, "failed to load map", err)
	}

	stats := m.Stats()
	VerboseLog("Loaded %d polygons (%d invalid) and %d markings (%d invalid), %d issues",
		stats.Polygons, stats.InvalidPolygons, stats.Markings, stats.InvalidMarkings, len(res.Issues))
	return m, res, nil
}

// parseIntArg converts a positional argument to an integer, naming the
// argument in the error.
func parseIntArg(name, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("%s must be an integer, got %q", name, value))
	}
	return v, nil
}
