// Command samstream runs a prequential evaluation of the SAM-kNN learner
// over a configured stream, emitting accuracy samples as CSV and storing
// the run summary.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	ocprom "contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats/view"

	"samstream/internal/eval"
	evalDb "samstream/internal/eval/database"
	"samstream/internal/logging"
	"samstream/internal/samstream"
	"samstream/internal/setup"
	"samstream/internal/shutdown"
	"samstream/internal/stream"
)

func main() {
	ctx, done := shutdown.New()
	defer done()
	logger := logging.FromContext(ctx)
	if err := run(ctx); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	config := samstream.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Database().Close(ctx)

	source, closeSource, err := stream.SourceFor(&config.Stream)
	if err != nil {
		return fmt.Errorf("stream.SourceFor: %w", err)
	}
	defer closeSource()

	learner, err := env.ProvideLearner()()
	if err != nil {
		return fmt.Errorf("learner provider function error: %w", err)
	}

	if err := serveMetrics(ctx, config.SrvAddr); err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if config.Eval.OutputPath != "" {
		f, err := os.Create(config.Eval.OutputPath)
		if err != nil {
			return fmt.Errorf("unable to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	evaluator := eval.New(
		learner,
		source,
		eval.WithSampleFrequency(config.Eval.SampleFrequency),
		eval.WithMaxInstances(config.Eval.MaxInstances),
		eval.WithCSV(out),
		eval.WithResultStore(evalDb.New(env.Database())),
		eval.WithRunNames(config.Eval.StreamName, config.Eval.LearnerName),
	)

	result, err := evaluator.Run(ctx)
	if err != nil {
		return fmt.Errorf("evaluator.Run: %w", err)
	}
	logger.Infof("run %s finished: %d steps, accuracy %.4f, %d drifts, %d replacements",
		result.ID, result.Steps, result.Accuracy, result.Drifts, result.Replacements)
	return nil
}

// serveMetrics exposes the evaluation measures on /metrics.
func serveMetrics(ctx context.Context, addr string) error {
	logger := logging.FromContext(ctx)
	if err := view.Register(eval.Views()...); err != nil {
		return fmt.Errorf("unable to register views: %w", err)
	}
	exporter, err := ocprom.NewExporter(ocprom.Options{Namespace: "samstream"})
	if err != nil {
		return fmt.Errorf("unable to create metrics exporter: %w", err)
	}
	view.RegisterExporter(exporter)

	mux := http.NewServeMux()
	mux.Handle("/metrics", exporter)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Debugf("metrics server stopped: %v", err)
		}
	}()
	return nil
}
