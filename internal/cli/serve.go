package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/netweave/netweave/internal/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the netweave HTTP API",
		Long: `Run the netweave HTTP API.

Endpoints:
  GET  /healthz     liveness probe
  POST /v1/convert  translate a document between formats
  POST /v1/layout   compute force-directed positions
  POST /v1/render   produce dot/svg/png/pdf artifacts

The server shares the store configuration with the CLI, so rendered
artifacts are cached across requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noStore)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: from config, :8080)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable artifact caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noStore bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	runner, st := c.newRunner(ctx, cfg, noStore)
	defer st.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(runner, cfg.PipelineOptions(), c.Logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}
