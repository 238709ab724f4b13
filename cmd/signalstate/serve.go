package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/signalstate/internal/config"
	"github.com/vango-dev/signalstate/internal/errors"
	"github.com/vango-dev/signalstate/pkg/effect"
	"github.com/vango-dev/signalstate/pkg/inspect"
	"github.com/vango-dev/signalstate/pkg/middleware"
	"github.com/vango-dev/signalstate/pkg/state"
)

func serveCmd() *cobra.Command {
	var (
		addr string
		tick time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live graph through the inspector",
		Long: `Serve a live demo graph through the inspector.

A ticker updates a counter cell; views derived from it are exposed at
/views, streamed over /ws after every flush, and instrumented through
/metrics.

Examples:
  signalstate serve
  signalstate serve --addr=:6060 --tick=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspector.Address = addr
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), tick, nil)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "Interval between counter updates")

	return cmd
}

// demoGraph is the graph served by the serve command.
type demoGraph struct {
	ticks  *state.Value[int]
	parity state.Reader[string]
	window state.Reader[[]int]
}

func newDemoGraph() *demoGraph {
	ticks := state.NewValue(0)
	return &demoGraph{
		ticks: ticks,
		parity: state.View1(ticks, func(n int) string {
			if n%2 == 0 {
				return "even"
			}
			return "odd"
		}),
		window: state.View1(ticks, func(n int) []int {
			out := make([]int, 0, 5)
			for i := max(0, n-4); i <= n; i++ {
				out = append(out, i)
			}
			return out
		}),
	}
}

// runServe serves the inspector until ctx is done. When ready is not nil it
// receives the bound listener address.
func runServe(ctx context.Context, cfg *config.Config, out, logOut io.Writer, tick time.Duration, ready chan<- string) error {
	logger := newLogger(cfg, logOut)

	state.ResetDefaults()
	defer state.ResetDefaults()
	cfg.Apply(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	instruments := []state.Instrumentation{middleware.NewLogging(logger)}
	if cfg.Metrics.Enabled {
		instruments = append(instruments, middleware.Prometheus(
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithRegistry(registry),
		))
	}
	if cfg.Tracing.Enabled {
		instruments = append(instruments, middleware.OpenTelemetry(
			middleware.WithTracerName(cfg.Tracing.TracerName),
		))
	}
	state.SetInstrumentation(state.MultiInstrumentation(instruments...))

	graph := newDemoGraph()

	insp := inspect.New(inspect.WithLogger(logger), inspect.WithGatherer(registry))
	if err := inspect.Register[int](insp, "ticks", graph.ticks); err != nil {
		return err
	}
	if err := inspect.Register[string](insp, "parity", graph.parity); err != nil {
		return err
	}
	if err := inspect.Register[[]int](insp, "window", graph.window); err != nil {
		return err
	}
	insp.Start()
	defer insp.Close()

	watcher := effect.Watch(ctx, graph.parity, func(ctx context.Context, parity string) error {
		logger.Info("parity changed", "parity", parity)
		return nil
	}, effect.Name("parity"), effect.WithLogger(logger))
	defer watcher.Stop()

	ln, err := net.Listen("tcp", cfg.Inspector.Address)
	if err != nil {
		return errors.New("E201").Wrap(err)
	}
	server := &http.Server{
		Handler:           insp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	success(out, "Inspector listening on http://%s", ln.Addr())
	info(out, "views:   http://%s/views", ln.Addr())
	info(out, "feed:    ws://%s/ws", ln.Addr())
	if cfg.Metrics.Enabled {
		info(out, "metrics: http://%s/metrics", ln.Addr())
	}
	if ready != nil {
		ready <- ln.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("E201").Wrap(err)
		}
		return nil
	})

	g.Go(func() error {
		return drive(gctx, graph.ticks, tick)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		insp.Feed().Close()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintln(out)
	info(out, "Shut down")
	return nil
}

// drive increments ticks every interval until ctx is done.
func drive(ctx context.Context, ticks *state.Value[int], interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			state.UpdateWith(ticks, func(n int) int { return n + 1 })
		}
	}
}
