// Command logic-gates serves the logic gate tools over stdio or HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	logicgates "github.com/ajitpratap0/logic-gates-mcp"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/config"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/logging"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/observability"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/server"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/transport"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		config.Usage(os.Stderr)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logic-gates: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logic-gates: %v\n", err)
		os.Exit(2)
	}
	logging.SetGlobalLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server exited with error")
	}
}

func newLogger(cfg config.Config) (logging.Logger, error) {
	formatter, err := logging.FormatterFor(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	// stdout belongs to the stdio transport
	logger := logging.New(os.Stderr, formatter).WithFields(
		logging.String("service", cfg.ServiceName),
		logging.String("version", cfg.ServiceVersion),
	)
	logger.SetLevel(level)
	return logger, nil
}

func run(ctx context.Context, cfg config.Config, logger logging.Logger) error {
	// The server returning on its own (stdin EOF) ends the whole group.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	opts := []server.ServerOption{server.WithLogger(logger)}
	var httpOpts []transport.HTTPOption

	if cfg.TracingEnabled {
		tracing, err := observability.NewTracingProvider(cfg.TracingConfig())
		if err != nil {
			return fmt.Errorf("create tracing provider: %w", err)
		}
		defer shutdown(logger, "tracing", cfg, tracing.Shutdown)

		opts = append(opts, server.WithTracing(tracing))
		httpOpts = append(httpOpts, transport.WithMiddleware(tracing.HTTPMiddleware))
	}

	if cfg.MetricsEnabled {
		metrics, err := observability.NewMetricsProvider(cfg.MetricsConfig())
		if err != nil {
			return fmt.Errorf("create metrics provider: %w", err)
		}
		opts = append(opts, server.WithMetrics(metrics))

		if cfg.Transport == string(transport.TransportTypeHTTP) {
			httpOpts = append(httpOpts, transport.WithRoute(metrics.Path(), metrics.Handler()))
		} else {
			g.Go(func() error {
				logger.Info("Serving metrics", logging.String("addr", cfg.MetricsAddr), logging.String("path", metrics.Path()))
				return metrics.Start(ctx)
			})
		}
	}

	t, err := newTransport(cfg, logger, httpOpts)
	if err != nil {
		return err
	}

	srv, err := logicgates.NewServer(t, opts...)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	g.Go(func() error {
		defer cancel()
		return srv.Start(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Stop(stopCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newTransport(cfg config.Config, logger logging.Logger, httpOpts []transport.HTTPOption) (transport.Transport, error) {
	tc := cfg.TransportConfig(logger)
	if tc.Type == transport.TransportTypeHTTP {
		return transport.NewHTTPTransport(tc, httpOpts...), nil
	}
	return transport.NewTransport(tc)
}

func shutdown(logger logging.Logger, name string, cfg config.Config, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.WithError(err).Warn("Shutdown failed", logging.String("provider", name))
	}
}
