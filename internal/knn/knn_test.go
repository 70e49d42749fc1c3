package knn

import (
	"reflect"
	"testing"
)

func TestNArgMin(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		values   []float64
		lo, hi   int
		expected []int
	}{
		{name: "sorted_ascending", n: 2, values: []float64{0.1, 0.2, 0.3}, lo: 0, hi: 2, expected: []int{0, 1}},
		{name: "sorted_descending", n: 2, values: []float64{0.3, 0.2, 0.1}, lo: 0, hi: 2, expected: []int{2, 1}},
		{name: "ties_keep_first_seen", n: 3, values: []float64{0.5, 0.5, 0.5, 0.5}, lo: 0, hi: 3, expected: []int{0, 1, 2}},
		{name: "subrange", n: 2, values: []float64{0.0, 0.9, 0.4, 0.6}, lo: 1, hi: 3, expected: []int{2, 3}},
		{name: "single", n: 1, values: []float64{2, 1, 3}, lo: 0, hi: 2, expected: []int{1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := NArgMin(test.n, test.values, test.lo, test.hi)
			if !reflect.DeepEqual(got, test.expected) {
				t.Errorf("unexpected neighbor indices, got %v, expected %v", got, test.expected)
			}
		})
	}
}

func TestVotes(t *testing.T) {
	labels := []int{0, 1, 0, 1}
	labelAt := func(idx int) int { return labels[idx] }

	t.Run("uniform", func(t *testing.T) {
		got := Votes([]float64{1, 2, 3, 4}, []int{0, 1, 2}, labelAt, 2, 0, true)
		expected := []float64{2, 1}
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("unexpected votes, got %v, expected %v", got, expected)
		}
	})

	t.Run("distance_weighted", func(t *testing.T) {
		got := Votes([]float64{1, 2, 4, 4}, []int{0, 1, 2}, labelAt, 2, 0, false)
		expected := []float64{1.25, 0.5}
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("unexpected votes, got %v, expected %v", got, expected)
		}
	})

	t.Run("zero_distance_floors", func(t *testing.T) {
		got := Votes([]float64{0, 1}, []int{0}, labelAt, 2, 0, false)
		floor := 1e-9
		expected := 1 / floor
		if got[0] != expected {
			t.Errorf("zero distance must be floored to %v, giving a vote of %v, got %v", floor, expected, got[0])
		}
	})

	t.Run("start_idx_offset", func(t *testing.T) {
		got := Votes([]float64{9, 9, 1, 2}, []int{2, 3}, labelAt, 2, 2, true)
		expected := []float64{1, 1}
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("unexpected votes, got %v, expected %v", got, expected)
		}
	})
}

func TestMaxIndex(t *testing.T) {
	tests := []struct {
		name     string
		votes    []float64
		expected int
	}{
		{name: "plain_max", votes: []float64{0.1, 0.9, 0.3}, expected: 1},
		{name: "tie_smallest_class", votes: []float64{0.5, 0.5}, expected: 0},
		{name: "all_zero", votes: []float64{0, 0, 0}, expected: 0},
		{name: "empty", votes: nil, expected: -1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := MaxIndex(test.votes); got != test.expected {
				t.Errorf("unexpected argmax, got %d, expected %d", got, test.expected)
			}
		})
	}
}
