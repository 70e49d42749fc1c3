package samknn

import (
	"samstream/internal/geom"
	"samstream/pkg/randutil"
)

// Config carries the environment-facing knobs of a single learner.
type Config struct {
	K                  int     `envconfig:"SAM_K" default:"5"`
	Limit              int     `envconfig:"SAM_LIMIT" default:"1000"`
	MinSTMSize         int     `envconfig:"SAM_MIN_STM_SIZE" default:"50"`
	RelativeLTMSize    float64 `envconfig:"SAM_RELATIVE_LTM_SIZE" default:"0.4"`
	RecalculateError   bool    `envconfig:"SAM_RECALCULATE_ERROR"`
	UniformWeighted    bool    `envconfig:"SAM_UNIFORM_WEIGHTED"`
	AdaptationInterval int     `envconfig:"SAM_ADAPTATION_INTERVAL" default:"1"`
	Metric             string  `envconfig:"SAM_DISTANCE_METRIC" default:"EUCLIDEAN"`
}

// Options returns the functional options matching the config values.
func (c Config) Options() []Option {
	return []Option{
		WithK(c.K),
		WithLimit(c.Limit),
		WithMinSTMSize(c.MinSTMSize),
		WithRelativeLTMSize(c.RelativeLTMSize),
		WithRecalculateError(c.RecalculateError),
		WithUniformWeighted(c.UniformWeighted),
		WithAdaptationInterval(c.AdaptationInterval),
		WithMetric(geom.MetricType(c.Metric)),
	}
}

type Options struct {
	k                  int
	limit              int
	minSTMSize         int
	relativeLTMSize    float64
	recalculateError   bool
	uniformWeighted    bool
	adaptationInterval int
	metric             geom.MetricType
}

var defaultOptions = Options{
	k:                  5,
	limit:              1000,
	minSTMSize:         50,
	relativeLTMSize:    0.4,
	adaptationInterval: 1,
	metric:             geom.MetricEuclidean,
}

type Option func(*Classifier)

func WithK(k int) Option {
	return func(c *Classifier) {
		c.opts.k = k
	}
}

func WithLimit(n int) Option {
	return func(c *Classifier) {
		c.opts.limit = n
	}
}

func WithMinSTMSize(n int) Option {
	return func(c *Classifier) {
		c.opts.minSTMSize = n
	}
}

func WithRelativeLTMSize(p float64) Option {
	return func(c *Classifier) {
		c.opts.relativeLTMSize = p
	}
}

func WithRecalculateError(b bool) Option {
	return func(c *Classifier) {
		c.opts.recalculateError = b
	}
}

func WithUniformWeighted(b bool) Option {
	return func(c *Classifier) {
		c.opts.uniformWeighted = b
	}
}

func WithAdaptationInterval(n int) Option {
	return func(c *Classifier) {
		c.opts.adaptationInterval = n
	}
}

func WithMetric(m geom.MetricType) Option {
	return func(c *Classifier) {
		c.opts.metric = m
	}
}

// WithRand fixes the learner's random source (compression, feature
// randomization). The default is an OS-seeded generator.
func WithRand(rng *randutil.Rand) Option {
	return func(c *Classifier) {
		c.rng = rng
	}
}
