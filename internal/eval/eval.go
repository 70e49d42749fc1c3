// Package eval drives a learner prequentially over a stream: every
// instance is first predicted, scored, and then used for training.
package eval

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opencensus.io/stats"

	evalDb "samstream/internal/eval/database"
	"samstream/internal/eval/model"
	"samstream/internal/instance"
	"samstream/internal/knn"
	"samstream/internal/logging"
	"samstream/internal/stream"
)

// ProvideFn builds the learner an evaluation or serving run drives.
type ProvideFn func() (Learner, error)

// Learner is the prequential contract: Predict then Train with the same
// instance pointer. The pointer identity is load-bearing — it lets the
// learners reuse the distance work done during the vote.
type Learner interface {
	SetContext(header *instance.Header)
	Predict(x *instance.Instance) []float64
	Train(ctx context.Context, x *instance.Instance) error
	AfterLearning()
}

// DriftReporter is implemented by learners that track drift handling.
type DriftReporter interface {
	DriftDetections() int
	Replacements() int
}

type Config struct {
	SampleFrequency int    `envconfig:"EVAL_SAMPLE_FREQUENCY" default:"1000"`
	MaxInstances    int    `envconfig:"EVAL_MAX_INSTANCES"`
	OutputPath      string `envconfig:"EVAL_OUTPUT"`
	StreamName      string `envconfig:"EVAL_STREAM_NAME" default:"stream"`
	LearnerName     string `envconfig:"EVAL_LEARNER_NAME" default:"samknn-ensemble"`
}

type Option func(*Evaluator)

func WithSampleFrequency(n int) Option {
	return func(e *Evaluator) {
		e.sampleFrequency = n
	}
}

func WithMaxInstances(n int) Option {
	return func(e *Evaluator) {
		e.maxInstances = n
	}
}

// WithCSV streams sample rows to w as
// steps,accuracy,windowAccuracy,drifts.
func WithCSV(w io.Writer) Option {
	return func(e *Evaluator) {
		e.csv = w
	}
}

// WithResultStore persists the run summary when the stream ends.
func WithResultStore(db *evalDb.DB) Option {
	return func(e *Evaluator) {
		e.resultDb = db
	}
}

func WithRunNames(stream, learner string) Option {
	return func(e *Evaluator) {
		e.streamName = stream
		e.learnerName = learner
	}
}

func New(learner Learner, source stream.Source, opts ...Option) *Evaluator {
	e := &Evaluator{
		learner:         learner,
		source:          source,
		sampleFrequency: 1000,
		streamName:      "stream",
		learnerName:     "learner",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type Evaluator struct {
	learner Learner
	source  stream.Source

	sampleFrequency int
	maxInstances    int
	csv             io.Writer
	resultDb        *evalDb.DB
	streamName      string
	learnerName     string
}

// Run evaluates until the stream ends, the instance budget is spent or
// the context is cancelled, and returns the run summary.
func (e *Evaluator) Run(ctx context.Context) (*model.Result, error) {
	logger := logging.FromContext(ctx)
	result := model.NewResult(e.streamName, e.learnerName, time.Now())

	e.learner.SetContext(e.source.Header())
	defer e.learner.AfterLearning()

	if e.csv != nil {
		if _, err := fmt.Fprintln(e.csv, "steps,accuracy,windowAccuracy,drifts"); err != nil {
			return nil, fmt.Errorf("unable to write csv header: %w", err)
		}
	}

	windowCorrect := 0
	for {
		select {
		case <-ctx.Done():
			logger.Infof("evaluation cancelled after %d steps", result.Steps)
			return e.finish(ctx, &result)
		default:
		}
		if e.maxInstances > 0 && result.Steps >= e.maxInstances {
			break
		}

		x, err := e.source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("stream error at step %d: %w", result.Steps, err)
		}

		votes := e.learner.Predict(x)
		if knn.MaxIndex(votes) == x.Class {
			result.Correct++
			windowCorrect++
		}
		if err := e.learner.Train(ctx, x); err != nil {
			return nil, fmt.Errorf("train error at step %d: %w", result.Steps, err)
		}
		result.Steps++

		if result.Steps%e.sampleFrequency == 0 {
			accuracy := float64(result.Correct) / float64(result.Steps)
			windowAccuracy := float64(windowCorrect) / float64(e.sampleFrequency)
			windowCorrect = 0
			drifts := 0
			if reporter, ok := e.learner.(DriftReporter); ok {
				drifts = reporter.DriftDetections()
			}
			stats.Record(ctx, MAccuracy.M(accuracy), MWindowAccuracy.M(windowAccuracy), MDrifts.M(int64(drifts)))
			if e.csv != nil {
				if _, err := fmt.Fprintf(e.csv, "%d,%f,%f,%d\n", result.Steps, accuracy, windowAccuracy, drifts); err != nil {
					return nil, fmt.Errorf("unable to write csv row: %w", err)
				}
			}
			logger.Debugf("step %d accuracy %.4f window %.4f", result.Steps, accuracy, windowAccuracy)
		}
	}
	return e.finish(ctx, &result)
}

func (e *Evaluator) finish(ctx context.Context, result *model.Result) (*model.Result, error) {
	result.FinishedAt = time.Now()
	if result.Steps > 0 {
		result.Accuracy = float64(result.Correct) / float64(result.Steps)
	}
	if reporter, ok := e.learner.(DriftReporter); ok {
		result.Drifts = reporter.DriftDetections()
		result.Replacements = reporter.Replacements()
	}
	if e.resultDb != nil {
		if err := e.resultDb.Store(ctx, *result); err != nil {
			return nil, fmt.Errorf("unable to store run result: %w", err)
		}
	}
	return result, nil
}
