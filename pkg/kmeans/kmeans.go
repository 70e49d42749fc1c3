// Package kmeans implements weighted kMeans++ over raw sample vectors.
//
// Every point carries its sample weight at index 0; the remaining entries
// are the data coordinates. Returned centroids contain the data
// coordinates only.
package kmeans

import (
	"samstream/internal/geom"
	"samstream/pkg/randutil"
)

const maxIterations = 100

// InitCentroids picks k starting centroids with the kMeans++ rule: the
// first proportional to sample weight, each following one proportional to
// the weighted squared distance to the nearest chosen centroid.
func InitCentroids(k int, points [][]float64, rng *randutil.Rand) [][]float64 {
	if k <= 0 || len(points) == 0 {
		return nil
	}
	if k > len(points) {
		k = len(points)
	}

	centroids := make([][]float64, 0, k)
	centroids = append(centroids, data(points[pickWeighted(points, rng)]))

	// weighted squared distance of every point to its nearest centroid
	nearest := make([]float64, len(points))
	for i := range points {
		nearest[i] = points[i][0] * sqDistance(points[i], centroids[0])
	}

	for len(centroids) < k {
		var sum float64
		for i := range nearest {
			sum += nearest[i]
		}
		var idx int
		if sum <= 0 {
			// remaining points coincide with chosen centroids
			idx = pickWeighted(points, rng)
		} else {
			target := rng.Float64() * sum
			var acc float64
			for i := range nearest {
				acc += nearest[i]
				if acc >= target {
					idx = i
					break
				}
			}
		}
		c := data(points[idx])
		centroids = append(centroids, c)
		for i := range points {
			if d := points[i][0] * sqDistance(points[i], c); d < nearest[i] {
				nearest[i] = d
			}
		}
	}
	return centroids
}

// Refine runs Lloyd iterations in place until assignments stabilize or the
// iteration cap is reached. Centroids left without points keep their
// previous position.
func Refine(centroids [][]float64, points [][]float64) {
	if len(centroids) == 0 || len(points) == 0 {
		return
	}
	dim := len(centroids[0])
	assign := make([]int, len(points))
	for i := range assign {
		assign[i] = -1
	}

	sums := make([][]float64, len(centroids))
	weights := make([]float64, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, dim)
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range points {
			best := 0
			bestDist := sqDistance(p, centroids[0])
			for c := 1; c < len(centroids); c++ {
				if d := sqDistance(p, centroids[c]); d < bestDist {
					bestDist = d
					best = c
				}
			}
			if best != assign[i] {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			return
		}

		for c := range centroids {
			weights[c] = 0
			for j := 0; j < dim; j++ {
				sums[c][j] = 0
			}
		}
		for i, p := range points {
			w := p[0]
			weights[assign[i]] += w
			for j := 0; j < dim; j++ {
				sums[assign[i]][j] += w * p[j+1]
			}
		}
		for c := range centroids {
			if weights[c] > 0 {
				for j := 0; j < dim; j++ {
					centroids[c][j] = sums[c][j] / weights[c]
				}
			}
		}
	}
}

func pickWeighted(points [][]float64, rng *randutil.Rand) int {
	var total float64
	for i := range points {
		total += points[i][0]
	}
	if total <= 0 {
		return rng.Intn(len(points))
	}
	target := rng.Float64() * total
	var acc float64
	for i := range points {
		acc += points[i][0]
		if acc >= target {
			return i
		}
	}
	return len(points) - 1
}

func data(p []float64) []float64 {
	c := make([]float64, len(p)-1)
	copy(c, p[1:])
	return c
}

func sqDistance(p []float64, centroid []float64) float64 {
	d, err := geom.EuclideanSqDistance(p[1:], centroid)
	if err != nil {
		return 0
	}
	return d
}
