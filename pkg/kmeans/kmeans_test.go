package kmeans

import (
	"math"
	"testing"

	"samstream/pkg/randutil"
)

func weighted(values ...float64) []float64 {
	return append([]float64{1}, values...)
}

func TestInitCentroidsCount(t *testing.T) {
	tests := []struct {
		name     string
		k        int
		points   [][]float64
		expected int
	}{
		{
			name:     "k_within_range",
			k:        2,
			points:   [][]float64{weighted(0, 0), weighted(1, 1), weighted(5, 5), weighted(6, 6)},
			expected: 2,
		},
		{
			name:     "k_clamped_to_points",
			k:        10,
			points:   [][]float64{weighted(0, 0), weighted(1, 1)},
			expected: 2,
		},
		{
			name:     "no_points",
			k:        3,
			points:   nil,
			expected: 0,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := InitCentroids(test.k, test.points, randutil.New(17))
			if len(got) != test.expected {
				t.Errorf("unexpected centroid count, got %d, expected %d", len(got), test.expected)
			}
			for _, c := range got {
				if len(test.points) > 0 && len(c) != len(test.points[0])-1 {
					t.Errorf("centroid must not carry the weight entry, got len %d", len(c))
				}
			}
		})
	}
}

func TestRefineSeparatesClusters(t *testing.T) {
	points := [][]float64{
		weighted(0.0, 0.1), weighted(0.1, 0.0), weighted(0.1, 0.1),
		weighted(9.9, 10.0), weighted(10.0, 9.9), weighted(10.1, 10.1),
	}
	centroids := InitCentroids(2, points, randutil.New(3))
	Refine(centroids, points)

	// one centroid per cluster, each near the cluster mean
	var nearOrigin, nearTen int
	for _, c := range centroids {
		d0 := math.Hypot(c[0]-0.066, c[1]-0.066)
		d10 := math.Hypot(c[0]-10, c[1]-10)
		if d0 < 0.5 {
			nearOrigin++
		}
		if d10 < 0.5 {
			nearTen++
		}
	}
	if nearOrigin != 1 || nearTen != 1 {
		t.Errorf("expected one centroid per cluster, got %v", centroids)
	}
}

func TestRefineRespectsWeights(t *testing.T) {
	// one heavy point dominates the centroid position of its cluster
	points := [][]float64{
		{9, 0, 0},
		{1, 1, 0},
	}
	centroids := [][]float64{{0.5, 0}}
	Refine(centroids, points)
	if math.Abs(centroids[0][0]-0.1) > 1e-9 {
		t.Errorf("weighted mean expected 0.1, got %v", centroids[0][0])
	}
}

func TestRefineIdenticalPoints(t *testing.T) {
	points := [][]float64{weighted(2, 2), weighted(2, 2), weighted(2, 2)}
	centroids := InitCentroids(1, points, randutil.New(8))
	Refine(centroids, points)
	if len(centroids) != 1 || centroids[0][0] != 2 || centroids[0][1] != 2 {
		t.Errorf("identical points must collapse to themselves, got %v", centroids)
	}
}
