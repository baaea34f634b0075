package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deepscout/matchup/internal/server"
)

var (
	serveAddr    string
	serveOffline bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the prediction HTTP API",
	Long: `Serves predictions over HTTP until interrupted. The API shares the local
cache with the CLI, so anything fetched here is visible to 'matchup team'
and vice versa.

Endpoints:
  GET  /health
  GET  /metrics
  POST /api/v1/predictions
  GET  /api/v1/predictions/{id}

Example:
  matchup serve --addr :8090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: configured addr)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "serve from the cache only, never fetch")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	addr := serveAddr
	if addr == "" {
		addr = rt.cfg.Addr
	}

	srv := server.New(server.Options{
		Addr:           addr,
		AllowedOrigins: rt.cfg.AllowedOrigins,
		Season:         rt.cfg.Season,
		Source:         rt.source(serveOffline, false),
		Store:          rt.db,
		Log:            rt.log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt.log.Info("starting http server", "addr", addr, "offline", serveOffline)
	return srv.Run(ctx)
}
