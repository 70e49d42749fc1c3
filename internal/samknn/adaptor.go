package samknn

import (
	"sort"

	"samstream/internal/knn"
)

// The size adaptor shrinks the STM to the suffix length with the lowest
// interleaved test-train error, evaluated over a geometric progression of
// candidate sizes. Prediction histories per start offset are cached and
// extended incrementally between adaptation steps.

func (c *Classifier) newSTMSize(recalculateErrors bool) int {
	if recalculateErrors {
		return c.minErrorRateWindowSize()
	}
	return c.minErrorRateWindowSizeIncremental()
}

// candidateSizes bisects from n down while the previous size still holds
// at least twice the minimum STM.
func (c *Classifier) candidateSizes(n int) []int {
	sizes := []int{n}
	for sizes[len(sizes)-1] >= 2*c.opts.minSTMSize {
		sizes = append(sizes, sizes[len(sizes)-1]/2)
	}
	return sizes
}

// minErrorRateWindowSize is the recalculate variant: stale cache keys are
// pruned so every candidate is evaluated from an exact history.
func (c *Classifier) minErrorRateWindowSize() int {
	numSamples := c.stm.len()
	if numSamples < 2*c.opts.minSTMSize {
		return numSamples
	}
	sizes := c.candidateSizes(numSamples)

	for key := range c.predHistories {
		if !containsInt(sizes, numSamples-key) {
			delete(c.predHistories, key)
		}
	}

	errorRates := make([]float64, 0, len(sizes))
	for _, size := range sizes {
		idx := numSamples - size
		var history []int
		if cached, ok := c.predHistories[idx]; ok {
			history = c.incrementalTestTrainHistory(idx, cached)
		} else {
			history = c.testTrainHistory(idx)
		}
		c.predHistories[idx] = history
		errorRates = append(errorRates, historyErrorRate(history))
	}

	minIdx := argMinFirst(errorRates)
	windowSize := sizes[minIdx]
	if windowSize < numSamples {
		c.adaptHistories(minIdx)
	}
	return windowSize
}

// minErrorRateWindowSizeIncremental approximates candidate errors by
// sliding cached histories forward. Any candidate that appears to beat
// the full window is recomputed once from scratch before the final pick,
// because its sliding approximation may have gone stale.
func (c *Classifier) minErrorRateWindowSizeIncremental() int {
	numSamples := c.stm.len()
	if numSamples < 2*c.opts.minSTMSize {
		return numSamples
	}
	sizes := c.candidateSizes(numSamples)

	errorRates := make([]float64, 0, len(sizes))
	for _, size := range sizes {
		idx := numSamples - size
		var history []int
		if cached, ok := c.predHistories[idx]; ok {
			history = c.incrementalTestTrainHistory(idx, cached)
		} else if cached, ok := c.predHistories[idx-1]; ok {
			delete(c.predHistories, idx-1)
			if len(cached) > 0 {
				cached = cached[1:]
			}
			history = c.incrementalTestTrainHistory(idx, cached)
		} else {
			history = c.testTrainHistory(idx)
		}
		c.predHistories[idx] = history
		errorRates = append(errorRates, historyErrorRate(history))
	}

	minIdx := argMinFirst(errorRates)
	if minIdx > 0 {
		for i := 1; i < len(errorRates); i++ {
			if errorRates[i] < errorRates[0] {
				idx := numSamples - sizes[i]
				history := c.testTrainHistory(idx)
				errorRates[i] = historyErrorRate(history)
				c.predHistories[idx] = history
			}
		}
		minIdx = argMinFirst(errorRates)
	}

	windowSize := sizes[minIdx]
	if windowSize < numSamples {
		c.adaptHistories(minIdx)
	}
	return windowSize
}

// testTrainHistory replays the STM suffix [startIdx..]: each instance is
// predicted with kNN over its predecessors, distances read straight from
// the cached matrix rows.
func (c *Classifier) testTrainHistory(startIdx int) []int {
	var history []int
	for i := startIdx + c.opts.k; i < c.stm.len(); i++ {
		predicted := c.suffixLabel(c.distM.row(i), startIdx, i)
		history = append(history, boolToBit(predicted == c.stm.get(i).Class))
	}
	return history
}

// incrementalTestTrainHistory extends an existing history with the STM
// instances it has not seen yet.
func (c *Classifier) incrementalTestTrainHistory(startIdx int, history []int) []int {
	for i := startIdx + c.opts.k + len(history); i < c.stm.len(); i++ {
		predicted := c.suffixLabel(c.distM.row(i), startIdx, i)
		history = append(history, boolToBit(predicted == c.stm.get(i).Class))
	}
	return history
}

// suffixLabel votes over the logical STM columns [startIdx, endIdx) of a
// physical matrix row.
func (c *Classifier) suffixLabel(row []float64, startIdx, endIdx int) int {
	nn := knn.NArgMin(minInt(c.opts.k, c.stm.len()), row, c.distM.physical(startIdx), c.distM.physical(endIdx-1))
	votes := knn.Votes(row, nn, c.stmLabel, c.maxClassValue+1, c.distM.origin, c.opts.uniformWeighted)
	return knn.MaxIndex(votes)
}

// adaptHistories drops the entry of the smallest surviving key once per
// deletion, re-keying the remainder relative to the new smallest offset.
func (c *Classifier) adaptHistories(numberOfDeletions int) {
	for i := 0; i < numberOfDeletions; i++ {
		keys := sortedKeys(c.predHistories)
		if len(keys) == 0 {
			return
		}
		delete(c.predHistories, keys[0])
		keys = keys[1:]
		if len(keys) == 0 {
			continue
		}
		minKey := keys[0]
		for _, key := range keys {
			history := c.predHistories[key]
			delete(c.predHistories, key)
			c.predHistories[key-minKey] = history
		}
	}
}

func historyErrorRate(history []int) float64 {
	if len(history) == 0 {
		return 1
	}
	return 1 - float64(historySum(history))/float64(len(history))
}

func argMinFirst(values []float64) int {
	minIdx := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[minIdx] {
			minIdx = i
		}
	}
	return minIdx
}

func containsInt(list []int, v int) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}

func sortedKeys(m map[int][]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
