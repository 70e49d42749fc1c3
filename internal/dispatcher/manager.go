// Package dispatcher runs a learner behind a collect/predict service.
// Collected instances flow through an unbounded queue into a single
// training worker, so the learner sees them in arrival order — the same
// ordering guarantee the prequential evaluator gives.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"samstream/internal/eval"
	"samstream/internal/instance"
	"samstream/internal/logging"
	"samstream/internal/notify"
	"samstream/pkg/iqueue"
)

// ProvideFn returns the Manager instance wired to a notifier.
type ProvideFn func(notify.Manager, chan<- error) (Manager, error)

type Manager interface {
	CollectPredictor
	Run(context.Context) error
	Stop()
}

// Collector accepts labeled instances for training.
type Collector interface {
	Collect(in ...*instance.Instance) error
}

// Predictor answers vote queries. The instances carry their label: the
// service is prequential, a prediction is scored against the provided
// label before the instance is trained on.
type Predictor interface {
	Predict(in *instance.Instance) ([]float64, error)
}

type CollectPredictor interface {
	Collector
	Predictor
}

type Config struct {
	Attributes int `envconfig:"SRV_ATTRIBUTES" default:"2"`
	NumClasses int `envconfig:"SRV_NUM_CLASSES" default:"2"`
}

var _ Manager = (*manager)(nil)

type manager struct {
	mtx sync.Mutex

	learner  eval.Learner
	header   *instance.Header
	notifier notify.Manager

	queue     *iqueue.Queue
	collectCh chan *instance.Instance

	shutDownCh chan<- error
	closed     bool

	trainSteps       int
	lastDetections   int
	lastReplacements int

	cancel         func()
	cancelNotifier func()
}

func New(provideLearner eval.ProvideFn, header *instance.Header, notifier notify.Manager, shutdownCh chan<- error) (*manager, error) {
	if provideLearner == nil {
		return nil, fmt.Errorf("learner provider is not created")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier instance is not created")
	}
	learner, err := provideLearner()
	if err != nil {
		return nil, fmt.Errorf("unable to create learner: %w", err)
	}
	return &manager{
		learner:    learner,
		header:     header,
		notifier:   notifier,
		queue:      iqueue.New(),
		collectCh:  make(chan *instance.Instance, 1),
		shutDownCh: shutdownCh,
	}, nil
}

func (m *manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	notifierCtx, cancelNotifier := context.WithCancel(context.Background())
	m.cancelNotifier = cancelNotifier

	m.learner.SetContext(m.header)

	go m.queue.Loop()
	go m.collector(ctx)
	go m.receive(ctx)

	if err := m.notifier.Run(notifierCtx); err != nil {
		return fmt.Errorf("notify.Run: %w", err)
	}
	return nil
}

func (m *manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Collect feeds labeled instances to the training queue.
func (m *manager) Collect(in ...*instance.Instance) error {
	m.mtx.Lock()
	if m.closed {
		m.mtx.Unlock()
		return fmt.Errorf("error send to collect, shutting down")
	}
	m.mtx.Unlock()
	for i := range in {
		m.collectCh <- in[i]
	}
	return nil
}

// Predict returns the learner's votes for one instance.
func (m *manager) Predict(in *instance.Instance) ([]float64, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.closed {
		return nil, fmt.Errorf("error to predict, shutting down")
	}
	return m.learner.Predict(in), nil
}

func (m *manager) process(ctx context.Context, x *instance.Instance) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	// score before training so the learner keeps its prequential histories
	m.learner.Predict(x)
	if err := m.learner.Train(ctx, x); err != nil {
		return fmt.Errorf("unable to train on instance: %w", err)
	}
	m.trainSteps++

	if reporter, ok := m.learner.(eval.DriftReporter); ok {
		if detections := reporter.DriftDetections(); detections > m.lastDetections {
			replacements := reporter.Replacements()
			event := notify.Event{
				Step:            m.trainSteps,
				Detections:      detections,
				ReplacedMembers: replacements - m.lastReplacements,
				CreatedAt:       time.Now(),
			}
			if acc, ok := m.learner.(interface{ AccCurrentConcept() float64 }); ok {
				event.Accuracy = acc.AccCurrentConcept()
			}
			m.notifier.Notify(event)
			m.lastDetections = detections
			m.lastReplacements = replacements
		}
	}
	return nil
}

func (m *manager) collector(ctx context.Context) {
	for {
		select {
		case in := <-m.collectCh:
			m.queue.Send(in)
		case <-ctx.Done():
			m.mtx.Lock()
			m.closed = true
			m.mtx.Unlock()
			return
		}
	}
}

func (m *manager) receive(ctx context.Context) {
	logger := logging.FromContext(ctx)
	defer func() {
		m.shutDownCh <- m.shutdown(ctx)
	}()

	for {
		select {
		case recv, ok := <-m.queue.Receive():
			if !ok {
				return
			}
			if err := m.process(ctx, recv.(*instance.Instance)); err != nil {
				logger.Errorf("unable to process instance: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// shutdown drains the backlog so nothing accepted by Collect is lost.
func (m *manager) shutdown(ctx context.Context) error {
	for {
		front := m.queue.Queue().Front()
		if front == nil {
			m.cancelNotifier()
			return nil
		}
		if err := m.process(ctx, front.Value.(*instance.Instance)); err != nil {
			return fmt.Errorf("dispatcher shutdown: unable to process backlog: %w", err)
		}
		m.queue.Queue().Remove(front)
	}
}
