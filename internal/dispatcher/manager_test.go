package dispatcher

import (
	"context"
	"testing"
	"time"

	"samstream/internal/eval"
	"samstream/internal/instance"
	"samstream/internal/notify"
	"samstream/internal/samknn"
	"samstream/pkg/randutil"
)

type nopNotifier struct{}

func (nopNotifier) Notify(...notify.Event) {}

func (nopNotifier) Run(ctx context.Context) error { return nil }

func (nopNotifier) Stop() {}

func newTestManager(t *testing.T) (*manager, chan error) {
	t.Helper()
	provide := func() (eval.Learner, error) {
		return eval.NewClassifierLearner(samknn.New(
			samknn.WithK(3),
			samknn.WithLimit(50),
			samknn.WithMinSTMSize(10),
			samknn.WithRand(randutil.New(64)),
		)), nil
	}
	shutdownCh := make(chan error, 1)
	m, err := New(provide, instance.NumericHeader(1, 2), nopNotifier{}, shutdownCh)
	if err != nil {
		t.Fatalf("unable to create manager: %v", err)
	}
	return m, shutdownCh
}

func TestCollectTrainsInOrder(t *testing.T) {
	m, shutdownCh := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	if err := m.Run(ctx); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for i := 0; i < 40; i++ {
		class := 0
		if i%2 == 1 {
			class = 1
		}
		x := float64(class)
		if err := m.Collect(instance.New([]float64{x}, class)); err != nil {
			t.Fatalf("collect failed: %v", err)
		}
	}

	deadline := time.After(5 * time.Second)
	for {
		m.mtx.Lock()
		trained := m.trainSteps
		m.mtx.Unlock()
		if trained == 40 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("training stalled at %d of 40 instances", trained)
		case <-time.After(10 * time.Millisecond):
		}
	}

	votes, err := m.Predict(instance.New([]float64{1}, 1))
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if len(votes) == 0 {
		t.Fatal("expected a non-empty vote vector")
	}

	cancel()
	select {
	case err := <-shutdownCh:
		if err != nil {
			t.Errorf("shutdown returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("shutdown did not complete")
	}
}

func TestPredictAfterShutdownFails(t *testing.T) {
	m, shutdownCh := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	if err := m.Run(ctx); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	cancel()
	<-shutdownCh

	// the collector marks the manager closed on cancellation
	deadline := time.After(2 * time.Second)
	for {
		m.mtx.Lock()
		closed := m.closed
		m.mtx.Unlock()
		if closed {
			break
		}
		select {
		case <-deadline:
			t.Fatal("manager never closed")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if _, err := m.Predict(instance.New([]float64{0}, 0)); err == nil {
		t.Error("predict after shutdown must fail")
	}
}
