package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/boundarylint/pkg/httpapi"
	"github.com/Sumatoshi-tech/boundarylint/pkg/observability"
)

const shutdownGrace = 10 * time.Second

func newServeCommand(global *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lint HTTP API",
		Long: `Serve the lint engine over HTTP:
  POST /v1/lint    lint {"filename", "code", "fix"}
  GET  /v1/rules   enabled rule metadata
  GET  /healthz    liveness
  GET  /metrics    Prometheus metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := global.open(sessionOptions{mode: observability.ModeServe, prometheus: true, logWriter: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer sess.close()

			if addr == "" {
				addr = sess.cfg.Server.Addr()
			}

			return serve(cmd.Context(), sess, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.host:server.port from config)")

	return cmd
}

func serve(ctx context.Context, sess *session, addr string) error {
	linter, err := sess.linter(nil)
	if err != nil {
		return err
	}

	red, err := observability.NewREDMetrics(sess.providers.Meter)
	if err != nil {
		return err
	}

	serverCfg := sess.cfg.Server

	server := &http.Server{
		Addr: addr,
		Handler: httpapi.NewHandler(httpapi.Deps{
			Linter:       linter,
			Logger:       sess.logger,
			Tracer:       sess.providers.Tracer,
			RED:          red,
			LintMetrics:  sess.metrics,
			Metrics:      sess.providers.MetricsHandler,
			MaxBodyBytes: serverCfg.MaxBodyBytes,
		}),
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		IdleTimeout:  serverCfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	sess.logger.Info("serving lint API", slog.String("addr", "http://"+listener.Addr().String()),
		slog.String("max_body", humanize.IBytes(uint64(max(serverCfg.MaxBodyBytes, 0)))))

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		err = server.Shutdown(shutdownCtx)
		if err == nil {
			err = <-serveErr
		}
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}
