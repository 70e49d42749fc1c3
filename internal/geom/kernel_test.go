package geom

import (
	"math"
	"testing"

	"samstream/internal/instance"
)

func mixedHeader() *instance.Header {
	return instance.NewHeader([]instance.Attribute{
		{Name: "num1", Kind: instance.KindNumeric},
		{Name: "num2", Kind: instance.KindNumeric},
		{Name: "color", Kind: instance.KindNominal},
	}, 2)
}

func TestKernelEuclideanMixedAttributes(t *testing.T) {
	header := mixedHeader()
	k, err := NewKernel(MetricEuclidean, header, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("unable to create kernel: %v", err)
	}
	a := instance.New([]float64{0, 0, 1}, 0)
	b := instance.New([]float64{3, 4, 2}, 1)
	// sqrt(9 + 16 + one nominal mismatch)
	expected := math.Sqrt(26)
	if got := k.Distance(a, b); math.Abs(got-expected) > 1e-12 {
		t.Errorf("mixed euclidean distance got %v, expected %v", got, expected)
	}

	same := instance.New([]float64{3, 4, 2}, 0)
	if got := k.Distance(b, same); got != 0 {
		t.Errorf("distance of identical values must be 0, got %v", got)
	}
}

func TestKernelAllNominalIsRootedHamming(t *testing.T) {
	header := instance.NewHeader([]instance.Attribute{
		{Name: "a", Kind: instance.KindNominal},
		{Name: "b", Kind: instance.KindNominal},
		{Name: "c", Kind: instance.KindNominal},
	}, 2)
	k, err := NewKernel(MetricEuclidean, header, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("unable to create kernel: %v", err)
	}
	a := instance.New([]float64{0, 1, 2}, 0)
	b := instance.New([]float64{1, 1, 0}, 1)
	if got := k.Distance(a, b); math.Abs(got-math.Sqrt(2)) > 1e-12 {
		t.Errorf("all-nominal euclidean must reduce to sqrt(mismatches), got %v", got)
	}
}

func TestKernelAttributeSubset(t *testing.T) {
	header := mixedHeader()
	k, err := NewKernel(MetricEuclidean, header, []int{1})
	if err != nil {
		t.Fatalf("unable to create kernel: %v", err)
	}
	a := instance.New([]float64{100, 1, 5}, 0)
	b := instance.New([]float64{-100, 4, 7}, 1)
	if got := k.Distance(a, b); got != 3 {
		t.Errorf("subset kernel must only see attribute 1, got %v", got)
	}
}

func TestKernelManhattanAndChebyshev(t *testing.T) {
	header := mixedHeader()
	a := instance.New([]float64{0, 0, 1}, 0)
	b := instance.New([]float64{3, 4, 1}, 1)

	manhattan, err := NewKernel(MetricManhattan, header, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("unable to create kernel: %v", err)
	}
	if got := manhattan.Distance(a, b); got != 7 {
		t.Errorf("manhattan distance got %v, expected 7", got)
	}

	chebyshev, err := NewKernel(MetricChebyshev, header, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("unable to create kernel: %v", err)
	}
	if got := chebyshev.Distance(a, b); got != 4 {
		t.Errorf("chebyshev distance got %v, expected 4", got)
	}
}

func TestKernelRejectsUnknownMetric(t *testing.T) {
	if _, err := NewKernel(MetricType("COSINE"), mixedHeader(), []int{0}); err == nil {
		t.Error("unknown metrics must be rejected")
	}
}

func TestDistanceTo(t *testing.T) {
	header := instance.NumericHeader(1, 2)
	k, err := NewKernel(MetricEuclidean, header, []int{0})
	if err != nil {
		t.Fatalf("unable to create kernel: %v", err)
	}
	list := []*instance.Instance{
		instance.New([]float64{1}, 0),
		instance.New([]float64{2}, 0),
		instance.New([]float64{4}, 1),
	}
	got := k.DistanceTo(instance.New([]float64{1}, 0), list)
	expected := []float64{0, 1, 3}
	if len(got) != len(expected) {
		t.Fatalf("distance vector length got %d, expected %d", len(got), len(expected))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("distance[%d] got %v, expected %v", i, got[i], expected[i])
		}
	}
}
