package drift

import "testing"

func TestNoDetectionOnStationaryStream(t *testing.T) {
	a := New(DefaultDelta)
	for i := 0; i < 2000; i++ {
		if a.Add(float64(i % 2)) {
			t.Fatalf("false detection at step %d on a stationary stream", i)
		}
	}
	if a.Width() != 2000 {
		t.Errorf("stationary stream must keep the full window, got width %d", a.Width())
	}
}

func TestDetectsAbruptMeanShift(t *testing.T) {
	a := New(DefaultDelta)
	detected := false
	for i := 0; i < 1000; i++ {
		a.Add(0)
	}
	for i := 0; i < 1000; i++ {
		if a.Add(1) {
			detected = true
		}
	}
	if !detected {
		t.Fatal("a 0 -> 1 mean shift must be detected")
	}
	if a.Detections() == 0 {
		t.Error("detection counter not incremented")
	}
	if a.Width() >= 2000 {
		t.Errorf("window must shrink after detection, got width %d", a.Width())
	}
	// the surviving window should reflect the new concept
	if a.Estimation() < 0.5 {
		t.Errorf("post-drift estimation should lean towards the new mean, got %v", a.Estimation())
	}
}

func TestEstimationTracksMean(t *testing.T) {
	a := New(DefaultDelta)
	for i := 0; i < 100; i++ {
		a.Add(1)
	}
	if a.Estimation() != 1 {
		t.Errorf("estimation of an all-ones stream must be 1, got %v", a.Estimation())
	}
}

func TestInvalidDeltaFallsBack(t *testing.T) {
	a := New(0)
	if a.delta != DefaultDelta {
		t.Errorf("invalid delta must fall back to the default, got %v", a.delta)
	}
}
