// Package notify pushes drift events to configured webhook targets. A
// failed delivery is logged and dropped; drift notification is advisory
// and must never stall the learning path.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"samstream/internal/httputil"
	"samstream/internal/logging"
	"samstream/pkg/rworker"
)

const userAgent = "samstream/0.1"

type ProvideFn func(chan<- error) (Manager, error)

// Event describes one drift-triggered member replacement round.
type Event struct {
	Step            int       `json:"step"`
	Detections      int       `json:"detections"`
	ReplacedMembers int       `json:"replacedMembers"`
	Accuracy        float64   `json:"accuracy"`
	CreatedAt       time.Time `json:"createdAt"`
}

type request struct {
	Events []Event `json:"events"`
}

type Notifier interface {
	Notify(events ...Event)
}

type Manager interface {
	Notifier
	Run(context.Context) error
	Stop()
}

type Config struct {
	Targets              []string      `envconfig:"NOTIFY_TARGETS"`
	Interval             time.Duration `envconfig:"NOTIFY_INTERVAL" default:"10s"`
	MaxConcurrentRequest int           `envconfig:"NOTIFY_MAX_CONCURRENT_REQUEST" default:"4"`
	HTTP                 httputil.Config
}

type Options struct {
	targets              []string
	interval             time.Duration
	maxConcurrentRequest int
	httpConfig           httputil.Config
}

type Option func(*manager)

func WithTargets(targets []string) Option {
	return func(m *manager) {
		m.opts.targets = targets
	}
}

func WithInterval(t time.Duration) Option {
	return func(m *manager) {
		m.opts.interval = t
	}
}

func WithMaxConcurrentRequest(n int) Option {
	return func(m *manager) {
		m.opts.maxConcurrentRequest = n
	}
}

func WithHTTPConfig(cfg httputil.Config) Option {
	return func(m *manager) {
		m.opts.httpConfig = cfg
	}
}

var _ Manager = (*manager)(nil)

type manager struct {
	mtx        sync.Mutex
	opts       Options
	client     *http.Client
	pending    []Event
	shutdownCh chan<- error
	cancel     func()
}

func New(shutdownCh chan<- error, opts ...Option) (*manager, error) {
	m := &manager{
		opts: Options{
			interval:             10 * time.Second,
			maxConcurrentRequest: 4,
		},
		shutdownCh: shutdownCh,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.opts.maxConcurrentRequest < 1 {
		return nil, fmt.Errorf("notify: max concurrent requests must be positive")
	}
	m.client = httputil.NewClientFromConfig(m.opts.httpConfig)
	return m, nil
}

// Notify queues events for the next delivery tick.
func (m *manager) Notify(events ...Event) {
	m.mtx.Lock()
	m.pending = append(m.pending, events...)
	m.mtx.Unlock()
}

func (m *manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	go m.loop(ctx)
	return nil
}

func (m *manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *manager) loop(ctx context.Context) {
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(m.opts.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := m.flush(ctx); err != nil {
				logger.Errorf("notify flush: %v", err)
			}
		case <-ctx.Done():
			// deliver what is queued before going away
			if err := m.flush(context.Background()); err != nil {
				logger.Errorf("notify final flush: %v", err)
			}
			return
		}
	}
}

func (m *manager) flush(ctx context.Context) error {
	m.mtx.Lock()
	events := m.pending
	m.pending = nil
	m.mtx.Unlock()
	if len(events) == 0 || len(m.opts.targets) == 0 {
		return nil
	}

	body, err := json.Marshal(request{Events: events})
	if err != nil {
		return fmt.Errorf("unable to marshal events: %w", err)
	}

	var wg sync.WaitGroup
	rate := make(chan struct{}, m.opts.maxConcurrentRequest)
	errCh := make(chan error, 1)
	for _, target := range m.opts.targets {
		target := target
		rworker.Job(&wg, func() error {
			return m.post(ctx, target, body)
		}, rate, errCh)
	}
	wg.Wait()
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

func (m *manager) post(ctx context.Context, target string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("unable to build request for %s: %w", target, err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to deliver to %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("target %s answered %d", target, resp.StatusCode)
	}
	return nil
}
