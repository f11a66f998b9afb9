package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rdharma/folio/internal/config"
	"github.com/rdharma/folio/internal/config/autoconfig"
	"github.com/rdharma/folio/internal/post"
	"github.com/rdharma/folio/internal/server"
)

func serveCmd() *cobra.Command {
	var address string

	cmd := cobra.Command{
		Use:   "serve",
		Short: "Start the web server.",
		Long: `Start the web server. It stops gracefully on SIGINT or SIGTERM.

The address can be a host:port pair or a unix socket path prefixed
with "unix://".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := autoconfig.InvokeForCommand(func(cfg *config.Config) error {
				if address != "" {
					cfg.Server.Address = address
				}
				return nil
			})
			if err != nil {
				return err
			}

			return autoconfig.InvokeForCommand(
				func(
					s *server.Server,
					store *post.SQLStore,
					logger *zap.Logger,
				) error {
					defer func() { _ = logger.Sync() }()
					defer func() { _ = store.Close() }()

					ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
					defer stop()

					logger.Info("starting the server", zap.String("address", s.Addr()))
					cmd.Printf("Listening on %s\n", s.Addr())

					return s.Run(ctx)
				},
			)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Override the server address from the configuration.")

	return &cmd
}
