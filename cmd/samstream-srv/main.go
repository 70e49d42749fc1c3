// Command samstream-srv serves the learner over HTTP: labeled instances
// arrive on /collect and are trained in order, /predict answers vote
// queries, drift events go out to the configured webhooks.
package main

import (
	"context"
	"fmt"
	"net/http"

	ocprom "contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats/view"

	"samstream/internal/collect"
	"samstream/internal/eval"
	"samstream/internal/logging"
	"samstream/internal/predict"
	"samstream/internal/samstream"
	"samstream/internal/server"
	"samstream/internal/setup"
	"samstream/internal/shutdown"
)

func main() {
	ctx, done := shutdown.New()
	defer done()
	logger := logging.FromContext(ctx)
	if err := run(ctx, done); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, cancel func()) error {
	config := samstream.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Database().Close(ctx)

	shutdownCh := make(chan error, 2)

	notifier, err := env.ProvideNotifier()(shutdownCh)
	if err != nil {
		return fmt.Errorf("notifier provider function error: %w", err)
	}
	manager, err := env.ProvideDispatcher()(notifier, shutdownCh)
	if err != nil {
		return fmt.Errorf("dispatcher provider function error: %w", err)
	}
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("dispatcher.Run: %w", err)
	}

	srv, err := server.New(config.SrvAddr)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()

	collectHandler, err := collect.NewHandler(&config.Collect, manager)
	if err != nil {
		return fmt.Errorf("collect.NewHandler: %w", err)
	}
	mux.Handle("/collect", collectHandler)

	predictHandler, err := predict.NewHandler(&config.Predict, manager)
	if err != nil {
		return fmt.Errorf("predict.NewHandler: %w", err)
	}
	mux.Handle("/predict", predictHandler)
	mux.Handle("/health", server.HandleHealth(ctx))

	if err := mountMetrics(mux); err != nil {
		return err
	}

	go func() {
		if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
			cancel()
		}
	}()

	return <-shutdownCh
}

func mountMetrics(mux *http.ServeMux) error {
	if err := view.Register(eval.Views()...); err != nil {
		return fmt.Errorf("unable to register views: %w", err)
	}
	exporter, err := ocprom.NewExporter(ocprom.Options{Namespace: "samstream"})
	if err != nil {
		return fmt.Errorf("unable to create metrics exporter: %w", err)
	}
	view.RegisterExporter(exporter)
	mux.Handle("/metrics", exporter)
	return nil
}
