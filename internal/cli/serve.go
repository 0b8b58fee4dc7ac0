package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mailpane/mailpane/internal/config"
	"github.com/mailpane/mailpane/internal/dom"
	"github.com/mailpane/mailpane/internal/metrics"
	"github.com/mailpane/mailpane/internal/push"
	"github.com/mailpane/mailpane/internal/server"
	"github.com/mailpane/mailpane/internal/upstream"
	"github.com/mailpane/mailpane/internal/widget"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Mount the widget and serve it as an HTML fragment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			col := metrics.NewCollector()
			w, err := mountWidget(cfg, widget.WithMetrics(col))
			if err != nil {
				return err
			}
			defer w.Destroy()

			ctx, stop := signal.NotifyContext(context.Background(),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.New(cfg.Server, w, col).Run(ctx)
		},
	}
	return cmd
}

// mountWidget builds the widget host document and mounts a widget
// against the configured upstream.
func mountWidget(cfg *config.Config, extra ...widget.Option) (*widget.Widget, error) {
	doc := dom.New(dom.Spec{
		Tag: "body",
		Children: []dom.Spec{
			{Tag: "div", ClassName: cfg.Widget.ContainerSelector},
		},
	})

	var source push.Source
	if cfg.Upstream.PushTransport == config.PushWebSocket {
		ws, err := push.NewWebSocketSource(cfg.Upstream.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("configure push transport: %w", err)
		}
		source = ws
	} else {
		source = push.NewSSESource(cfg.Upstream.BaseURL)
	}

	opts := append([]widget.Option{
		widget.WithFetcher(upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.FetchTimeout)),
		widget.WithPushSource(source),
		widget.WithRefreshInterval(cfg.Upstream.RefreshInterval),
	}, extra...)

	return widget.Mount(doc, cfg.Widget.ContainerSelector, cfg.Upstream.BaseURL, opts...), nil
}
