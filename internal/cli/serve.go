// serve.go implements the "mapserver serve" command, which loads the map
// once and answers queries over HTTP until interrupted.

package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/mapserver/internal/logger"
	"github.com/mmr-tortoise/mapserver/internal/metrics"
	"github.com/mmr-tortoise/mapserver/internal/model"
	"github.com/mmr-tortoise/mapserver/internal/server"
)

// serveFlags holds the flag values for the serve command.
type serveFlags struct {
	// listen overrides the configured listen address.
	listen string
}

// NewServeCommand creates the "serve" cobra command.
func NewServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve map queries over HTTP",
		Long: `Load the map file and serve queries over HTTP.

The map is loaded once at startup. A missing map file is a startup failure
(exit code 2); the server never starts with an empty map.

Endpoints:
  GET /markings/:id      marking position, 404 with -1,-1 when unknown
  GET /forbidden?x=&y=   forbidden check
  GET /map               GeoJSON of the loaded map
  GET /healthz           health and entity counts
  GET /metrics           Prometheus metrics

Examples:
  mapserver serve --map warehouse.db
  mapserver serve --config mapserver.yaml --listen :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.listen, "listen", "l", "", "Listen address (overrides config and MAPSERVER_LISTEN)")

	return cmd
}

func runServe(ctx context.Context, flags *serveFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flags.listen != "" {
		cfg.Listen = flags.listen
	}
	if err := cfg.ValidateServe(); err != nil {
		return model.WrapCLIError(model.ExitConfigError, "invalid configuration", err)
	}

	log, err := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return model.WrapCLIError(model.ExitConfigError, "invalid logging configuration", err)
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	m, res, err := loadMap(cfg, log)
	if err != nil {
		return err
	}
	stats := m.Stats()
	metrics.SetMap(stats, len(res.Issues))
	log.Info("map_loaded",
		"path", cfg.Map,
		"polygons", stats.Polygons,
		"invalid_polygons", stats.InvalidPolygons,
		"markings", stats.Markings,
		"invalid_markings", stats.InvalidMarkings,
		"issues", len(res.Issues),
	)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg.Listen, server.New(m, log), log); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "server failed", err)
	}
	return nil
}
