package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/storekit-dev/storekit/pkg/inspect"
	"github.com/storekit-dev/storekit/pkg/middleware"
	"github.com/storekit-dev/storekit/pkg/sktest"
	"github.com/storekit-dev/storekit/pkg/storekit"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inspector over a demo store",
		Long: `Serve the inspector over a demo counter store.

Examples:
  storekit-inspect serve
  storekit-inspect serve --addr=:7000 --interval=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, interval)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":6360", "Address to listen on")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "Demo dispatch interval")

	return cmd
}

func runServe(addr string, interval time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	registry := storekit.NewRegistry()
	srv := inspect.NewServer(registry, inspect.WithLogger(logger))

	// Backend chain: reducer loop, tapped for the feed, metered.
	reducer := sktest.NewReducerBackend()
	backend := middleware.Prometheus(srv.Tap(reducer))

	store, err := demoStore(backend, registry)
	if err != nil {
		return err
	}
	reducer.Bind(store)

	r := chi.NewRouter()
	r.Mount("/inspect", srv.Handler())
	r.Handle("/metrics", promhttp.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go tick(ctx, store, interval, logger)

	httpSrv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
		srv.Close()
		registry.UnsubscribeAll()
	}()

	logger.Info("inspector listening", "addr", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// demoStore declares a counter with one sync and one async action so the
// feed shows both plain and lifecycle dispatches.
func demoStore(backend storekit.Backend, registry *storekit.Registry) (*storekit.Store, error) {
	return storekit.New(storekit.Definition{
		Name:         "counter",
		InitialState: map[string]any{"count": 0},
		Actions: map[string]storekit.ActionSpec{
			"increment": {Do: func(s *storekit.Store, args ...any) (any, error) {
				return args[0], nil
			}},
			"slowIncrement": {DoAsync: func(ctx context.Context, s *storekit.Store, args ...any) (any, error) {
				select {
				case <-time.After(100 * time.Millisecond):
					return args[0], nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}},
		},
		Handlers: map[string]storekit.HandlerSpec{
			"increment": {Handle: addCount},
			"slowIncrement": {
				Success: addCount,
			},
		},
		Selectors: map[string]storekit.Selector{
			"count": func(state any) any {
				return state.(map[string]any)["count"]
			},
		},
	}, storekit.WithBackend(backend), storekit.WithRegistry(registry))
}

func addCount(state, payload any, rawType string) any {
	m := state.(map[string]any)
	return map[string]any{"count": m["count"].(int) + payload.(int)}
}

// tick drives the demo store so the inspector feed stays live.
func tick(ctx context.Context, store *storekit.Store, interval time.Duration, logger *slog.Logger) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		name := "increment"
		if i%5 == 4 {
			name = "slowIncrement"
		}
		call, err := store.Invoke(ctx, name, 1)
		if err != nil {
			logger.Error("demo invoke failed", "action", name, "error", err)
			continue
		}
		if _, err := call.Await(ctx); err != nil && ctx.Err() == nil {
			logger.Error("demo action failed", "action", name, "error", err)
		}
	}
}
