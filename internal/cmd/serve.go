package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gravitrone/datafiles/internal/web"
)

// healthTimeout bounds the engine check behind /healthz.
const healthTimeout = 5 * time.Second

// ServeCmd returns the `datafiles serve` command.
func ServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the record pages over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(func(s *Session) error {
				srv, err := web.New(s.Records, s.Client.WithTimeout(healthTimeout), s.Logger)
				if err != nil {
					return err
				}
				listen := addr
				if listen == "" {
					listen = s.Config.ListenAddr
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				fmt.Fprintf(cmd.ErrOrStderr(), "listening on http://%s\n", listen)
				return srv.Run(ctx, listen)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
