package commands

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kingrea/tourdesk/internal/server"
)

func serveCmd() *cobra.Command {
	var (
		addr    string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference backend over the local database and catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			backend, st, err := openBackend()
			if err != nil {
				return err
			}
			defer st.Close()
			logger.Info("database ready", "path", cfg.DatabasePath())

			settings := server.SettingsFromConfig(cfg)
			if addr != "" {
				settings.Addr = addr
			}
			srv := server.NewServer(settings, backend, server.WithLogger(logger))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Listen(); err != nil {
				return err
			}
			logger.Info("serving", "url", srv.BaseURL(), "catalog", cfg.CatalogPath())
			return srv.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every request")
	return cmd
}
