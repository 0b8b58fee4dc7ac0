package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailpane/mailpane/internal/logging"
	"github.com/mailpane/mailpane/internal/stub"
)

func newStubCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a self-contained development upstream",
		Long:  "stub serves an in-memory mailbox with the unread endpoint, mutation endpoints and push channels over SSE and WebSocket, for developing against without a real upstream.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logCfg := logging.DefaultConfig()
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				logCfg.Level = level
			}
			if format, _ := cmd.Flags().GetString("log-format"); format != "" {
				logCfg.Format = format
			}
			logging.Init(logCfg)

			srv := &http.Server{
				Addr:              addr,
				Handler:           stub.NewServer().Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log := logging.Component("stub")
				log.Info().Str("addr", addr).Msg("stub upstream listening")
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve stub: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9090", "address to listen on")
	return cmd
}
