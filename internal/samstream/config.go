package samstream

import (
	"samstream/internal/collect"
	"samstream/internal/database"
	"samstream/internal/dispatcher"
	"samstream/internal/ensemble"
	"samstream/internal/eval"
	"samstream/internal/notify"
	"samstream/internal/predict"
	"samstream/internal/samknn"
	"samstream/internal/setup"
	"samstream/internal/stream"
)

var (
	_ setup.LearnerConfigProvider    = (*Config)(nil)
	_ setup.DatabaseConfigProvider   = (*Config)(nil)
	_ setup.NotifierConfigProvider   = (*Config)(nil)
	_ setup.DispatcherConfigProvider = (*Config)(nil)
)

// Config aggregates every component config of the process. Values come
// from the environment; defaults match the reference parameters of the
// learner.
type Config struct {
	SrvAddr string `envconfig:"SAMSTREAM_ADDR" default:":8787"`
	Learner string `envconfig:"SAMSTREAM_LEARNER" default:"ENSEMBLE"`

	SAM        samknn.Config
	Ensemble   ensemble.Config
	Eval       eval.Config
	Stream     stream.Config
	Database   database.Config
	Notify     notify.Config
	Dispatcher dispatcher.Config
	Collect    collect.Config
	Predict    predict.Config
}

func (c *Config) LearnerType() string {
	return c.Learner
}

func (c *Config) SAMConfig() *samknn.Config {
	return &c.SAM
}

func (c *Config) EnsembleConfig() *ensemble.Config {
	return &c.Ensemble
}

func (c *Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *Config) NotifyConfig() *notify.Config {
	return &c.Notify
}

func (c *Config) DispatcherConfig() *dispatcher.Config {
	return &c.Dispatcher
}
