package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/devserver"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve [demo]",
		Short: "Serve a demo component to a browser",
		Long: `Start the dev preview server for a demo component.

The component renders server-side; the page mirrors its render
root over a WebSocket and forwards clicks, input and focus changes
back to it. Prometheus metrics are served at /metrics.

Examples:
  weft serve
  weft serve todo --port=8080
  weft serve calendar --host=0.0.0.0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "todo"
			if len(args) == 1 {
				name = args[0]
			}
			a, err := g.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()
			if port > 0 {
				a.cfg.Dev.Port = port
			}
			if host != "" {
				a.cfg.Dev.Host = host
			}

			srv, err := devserver.New(devserver.Options{
				Config:  a.cfg,
				Demo:    name,
				Logger:  a.logger,
				Metrics: a.metrics,
				Tracer:  a.tracer,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printBanner(w)
			info(w, "serve %s", name)
			success(w, "Listening on %s", a.cfg.DevURL())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from weft.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from weft.json)")

	return cmd
}
