package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordbubbles/internal/server"
	"github.com/matzehuels/wordbubbles/pkg/config"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout and render HTTP API",
		Long: `Run the layout and render HTTP API.

Routes:
  GET  /healthz
  GET  /version
  POST /v1/layout           body → cloud JSON
  POST /v1/render?format=   body → svg, png, pdf or json

Requests start from the [layout] and [render] settings of the config file.
The cache backend is shared by all requests; point several replicas at the
same Redis to share work between them.

The address defaults to the [server] addr setting or $` + config.EnvAddr + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.cfg()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			listen := cfg.Server.Addr
			if cmd.Flags().Changed("addr") {
				listen = addr
			}

			srv := server.New(runner, c.Logger, server.Config{
				Addr:            listen,
				MaxBodyBytes:    cfg.Server.MaxBodyBytes,
				RequestTimeout:  cfg.RequestTimeout(),
				ShutdownTimeout: cfg.ShutdownTimeout(),
				Defaults:        cfg.PipelineOptions(),
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
