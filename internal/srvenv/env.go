package srvenv

import (
	"samstream/internal/database"
	"samstream/internal/dispatcher"
	"samstream/internal/eval"
	"samstream/internal/notify"
)

type Option func(*SrvEnv)

func WithDatabase(db *database.DB) Option {
	return func(e *SrvEnv) {
		e.database = db
	}
}

func WithLearner(fn eval.ProvideFn) Option {
	return func(e *SrvEnv) {
		e.learnerProvideFn = fn
	}
}

func WithNotifier(fn notify.ProvideFn) Option {
	return func(e *SrvEnv) {
		e.notifierProvideFn = fn
	}
}

func WithDispatcher(fn dispatcher.ProvideFn) Option {
	return func(e *SrvEnv) {
		e.dispatcherProvideFn = fn
	}
}

// SrvEnv aggregates the constructed dependencies of a process.
type SrvEnv struct {
	database            *database.DB
	learnerProvideFn    eval.ProvideFn
	notifierProvideFn   notify.ProvideFn
	dispatcherProvideFn dispatcher.ProvideFn
}

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, opt := range opts {
		opt(env)
	}
	return env
}

func (e *SrvEnv) Database() *database.DB {
	return e.database
}

func (e *SrvEnv) ProvideLearner() eval.ProvideFn {
	return e.learnerProvideFn
}

func (e *SrvEnv) ProvideNotifier() notify.ProvideFn {
	return e.notifierProvideFn
}

func (e *SrvEnv) ProvideDispatcher() dispatcher.ProvideFn {
	return e.dispatcherProvideFn
}
