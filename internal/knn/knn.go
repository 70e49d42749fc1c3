package knn

import "math"

// minDistance floors a neighbor distance before taking its reciprocal so a
// zero distance never divides by zero.
const minDistance = 1e-9

// LabelFn resolves the class label of the neighbor at a logical position.
type LabelFn func(idx int) int

// NArgMin returns the indices of the n smallest values within [lo, hi]
// (both inclusive), ordered by increasing value. Equal values keep the
// earliest index; the ordering of ties is part of the contract and must
// not change.
func NArgMin(n int, values []float64, lo, hi int) []int {
	indices := make([]int, n)
	for i := 0; i < n; i++ {
		minValue := math.MaxFloat64
		for j := lo; j <= hi; j++ {
			if values[j] < minValue {
				used := false
				for k := 0; k < i; k++ {
					if indices[k] == j {
						used = true
						break
					}
				}
				if !used {
					indices[i] = j
					minValue = values[j]
				}
			}
		}
	}
	return indices
}

// NArgMinAll is NArgMin over the whole vector.
func NArgMinAll(n int, values []float64) []int {
	return NArgMin(n, values, 0, len(values)-1)
}

// Votes accumulates per-class votes for the given neighbor indices. The
// indices refer to positions in the distances vector; startIdx maps them
// onto the label space (physical-to-logical offset of the distance matrix,
// zero for plain vectors). Weighted mode adds 1/distance, uniform mode 1.
func Votes(distances []float64, nnIndices []int, labelAt LabelFn, numClasses int, startIdx int, uniform bool) []float64 {
	v := make([]float64, numClasses)
	for _, nnIdx := range nnIndices {
		if uniform {
			v[labelAt(nnIdx-startIdx)]++
		} else {
			v[labelAt(nnIdx-startIdx)] += 1. / math.Max(distances[nnIdx], minDistance)
		}
	}
	return v
}

// MaxIndex returns the class with the highest vote; ties resolve to the
// smallest class index. Returns -1 for an empty vector.
func MaxIndex(votes []float64) int {
	maxVote := -1.0
	maxVoteClass := -1
	for i, v := range votes {
		if v > maxVote {
			maxVote = v
			maxVoteClass = i
		}
	}
	return maxVoteClass
}
