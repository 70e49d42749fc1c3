package ensemble

import (
	"samstream/internal/samknn"
	"samstream/pkg/randutil"
)

// Config carries the environment-facing ensemble knobs.
type Config struct {
	Size                int     `envconfig:"ENSEMBLE_SIZE" default:"10"`
	Lambda              float64 `envconfig:"ENSEMBLE_LAMBDA" default:"6"`
	DisableWeightedVote bool    `envconfig:"ENSEMBLE_DISABLE_WEIGHTED_VOTE"`
	NoDriftDetection    bool    `envconfig:"ENSEMBLE_NO_DRIFT_DETECTION"`
	RandomizeK          bool    `envconfig:"ENSEMBLE_RANDOMIZE_K"`
	RandomizeFeatures   bool    `envconfig:"ENSEMBLE_RANDOMIZE_FEATURES"`
	RandomizeLambda     bool    `envconfig:"ENSEMBLE_RANDOMIZE_LAMBDA"`
	NumberOfJobs        int     `envconfig:"ENSEMBLE_JOBS" default:"-1"`
}

// Options returns the functional options matching the config values.
func (c Config) Options() []Option {
	return []Option{
		WithSize(c.Size),
		WithLambda(c.Lambda),
		WithDisableWeightedVote(c.DisableWeightedVote),
		WithNoDriftDetection(c.NoDriftDetection),
		WithRandomizeK(c.RandomizeK),
		WithRandomizeFeatures(c.RandomizeFeatures),
		WithRandomizeLambda(c.RandomizeLambda),
		WithNumberOfJobs(c.NumberOfJobs),
	}
}

type Options struct {
	size                int
	lambda              float64
	disableWeightedVote bool
	noDriftDetection    bool
	randomizeK          bool
	randomizeFeatures   bool
	randomizeLambda     bool
	numberOfJobs        int
}

var defaultOptions = Options{size: 10, lambda: 6, numberOfJobs: -1}

type Option func(*Ensemble)

func WithSize(n int) Option {
	return func(e *Ensemble) {
		e.opts.size = n
	}
}

func WithLambda(l float64) Option {
	return func(e *Ensemble) {
		e.opts.lambda = l
	}
}

func WithDisableWeightedVote(b bool) Option {
	return func(e *Ensemble) {
		e.opts.disableWeightedVote = b
	}
}

func WithNoDriftDetection(b bool) Option {
	return func(e *Ensemble) {
		e.opts.noDriftDetection = b
	}
}

func WithRandomizeK(b bool) Option {
	return func(e *Ensemble) {
		e.opts.randomizeK = b
	}
}

func WithRandomizeFeatures(b bool) Option {
	return func(e *Ensemble) {
		e.opts.randomizeFeatures = b
	}
}

func WithRandomizeLambda(b bool) Option {
	return func(e *Ensemble) {
		e.opts.randomizeLambda = b
	}
}

// WithNumberOfJobs caps the worker pool; -1 uses every available CPU,
// values below 2 run members inline.
func WithNumberOfJobs(n int) Option {
	return func(e *Ensemble) {
		e.opts.numberOfJobs = n
	}
}

// WithMemberOptions forwards learner options to every member.
func WithMemberOptions(opts ...samknn.Option) Option {
	return func(e *Ensemble) {
		e.memberOpts = append(e.memberOpts, opts...)
	}
}

// WithRand fixes the ensemble's random source (bagging, randomization).
func WithRand(rng *randutil.Rand) Option {
	return func(e *Ensemble) {
		e.rng = rng
	}
}
