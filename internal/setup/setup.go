package setup

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"samstream/internal/database"
	"samstream/internal/dispatcher"
	"samstream/internal/ensemble"
	"samstream/internal/eval"
	"samstream/internal/instance"
	"samstream/internal/logging"
	"samstream/internal/notify"
	"samstream/internal/samknn"
	"samstream/internal/srvenv"
)

const (
	LearnerTypeSingle   = "SINGLE"
	LearnerTypeEnsemble = "ENSEMBLE"
)

type LearnerConfigProvider interface {
	LearnerType() string
	SAMConfig() *samknn.Config
	EnsembleConfig() *ensemble.Config
}

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type NotifierConfigProvider interface {
	NotifyConfig() *notify.Config
}

type DispatcherConfigProvider interface {
	DispatcherConfig() *dispatcher.Config
}

// Setup processes the environment into the config and builds the
// providers for every dependency the config describes.
func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var envOpts []srvenv.Option

	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var (
		db               *database.DB
		learnerProvideFn eval.ProvideFn
	)

	if provider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("configuring results database")
		dbFromEnv, err := database.NewFromEnv(ctx, provider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to open database: %w", err)
		}
		db = dbFromEnv
		envOpts = append(envOpts, srvenv.WithDatabase(db))
	}

	if provider, ok := config.(LearnerConfigProvider); ok {
		logger.Info("configuring learner")
		provideFn, err := ProvideLearnerFor(provider)
		if err != nil {
			return nil, fmt.Errorf("unable to create learner provider: %w", err)
		}
		learnerProvideFn = provideFn
		envOpts = append(envOpts, srvenv.WithLearner(learnerProvideFn))
	}

	var notifierProvideFn notify.ProvideFn
	if provider, ok := config.(NotifierConfigProvider); ok {
		logger.Info("configuring drift notifier")
		notifierProvideFn = ProvideNotifierFor(provider)
		envOpts = append(envOpts, srvenv.WithNotifier(notifierProvideFn))
	}

	if provider, ok := config.(DispatcherConfigProvider); ok && learnerProvideFn != nil {
		logger.Info("configuring dispatcher")
		envOpts = append(envOpts, srvenv.WithDispatcher(
			ProvideDispatcherFor(provider, learnerProvideFn),
		))
	}

	return srvenv.New(envOpts...), nil
}

// ProvideLearnerFor returns a factory for the configured learner type:
// the bare classifier or the full ensemble.
func ProvideLearnerFor(provider LearnerConfigProvider) (eval.ProvideFn, error) {
	samCfg := provider.SAMConfig()
	ensCfg := provider.EnsembleConfig()
	switch provider.LearnerType() {
	case LearnerTypeSingle:
		return func() (eval.Learner, error) {
			return eval.NewClassifierLearner(samknn.New(samCfg.Options()...)), nil
		}, nil
	case LearnerTypeEnsemble:
		return func() (eval.Learner, error) {
			opts := ensCfg.Options()
			opts = append(opts, ensemble.WithMemberOptions(samCfg.Options()...))
			return ensemble.New(opts...), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown learner type: %s", provider.LearnerType())
	}
}

func ProvideNotifierFor(provider NotifierConfigProvider) notify.ProvideFn {
	cfg := provider.NotifyConfig()
	return func(shutdownCh chan<- error) (notify.Manager, error) {
		return notify.New(
			shutdownCh,
			notify.WithTargets(cfg.Targets),
			notify.WithInterval(cfg.Interval),
			notify.WithMaxConcurrentRequest(cfg.MaxConcurrentRequest),
			notify.WithHTTPConfig(cfg.HTTP),
		)
	}
}

func ProvideDispatcherFor(provider DispatcherConfigProvider, provideLearner eval.ProvideFn) dispatcher.ProvideFn {
	cfg := provider.DispatcherConfig()
	return func(notifier notify.Manager, shutdownCh chan<- error) (dispatcher.Manager, error) {
		header := instance.NumericHeader(cfg.Attributes, cfg.NumClasses)
		return dispatcher.New(provideLearner, header, notifier, shutdownCh)
	}
}
