package samknn

import (
	"sort"

	"samstream/internal/knn"
)

// clean removes from toClean every point that contradicts cleanAgainst
// near one of its anchors: among the anchor's k nearest points in toClean,
// each wrong-class one no farther than the farthest same-class point among
// the anchor's k nearest cleanAgainst neighbors. onlyLast cleans against the
// newest STM instance only (incremental call after every Train); the full
// pass runs one anchor at a time over a just-discarded batch.
//
// A no-op while the anchor memory holds no more than k points or the
// target is empty.
func (c *Classifier) clean(cleanAgainst, toClean *window, onlyLast bool) {
	if cleanAgainst.len() <= c.opts.k || toClean.len() == 0 {
		return
	}
	if onlyLast {
		c.cleanSingle(cleanAgainst, cleanAgainst.len()-1, toClean, c.lastVotedDistLTM, true)
		return
	}
	for i := 0; i < cleanAgainst.len(); i++ {
		c.cleanSingle(cleanAgainst, i, toClean, nil, false)
	}
}

func (c *Classifier) cleanSingle(cleanAgainst *window, anchorIdx int, toClean *window, cachedDistances []float64, onlyLast bool) {
	anchor := cleanAgainst.get(anchorIdx)
	rest := cleanAgainst.without(anchorIdx)

	var distancesSTM []float64
	if onlyLast {
		// the newest instance's distances already sit in its matrix row
		distancesSTM = make([]float64, len(rest))
		row := c.distM.row(cleanAgainst.len() - 1)
		copy(distancesSTM, row[c.distM.physical(0):c.distM.physical(anchorIdx)])
	} else {
		distancesSTM = c.kernel.DistanceTo(anchor, rest)
	}
	nnSTM := knn.NArgMinAll(minInt(c.opts.k, len(distancesSTM)), distancesSTM)

	var distancesTarget []float64
	if c.lastVoted == anchor && cachedDistances != nil {
		distancesTarget = cachedDistances
	} else {
		distancesTarget = c.kernel.DistanceTo(anchor, toClean.items)
	}
	nnTarget := knn.NArgMinAll(minInt(c.opts.k, len(distancesTarget)), distancesTarget)

	var distThreshold float64
	for _, nnIdx := range nnSTM {
		if rest[nnIdx].Class == anchor.Class && distancesSTM[nnIdx] > distThreshold {
			distThreshold = distancesSTM[nnIdx]
		}
	}

	var delIndices []int
	for _, nnIdx := range nnTarget {
		if toClean.get(nnIdx).Class != anchor.Class && distancesTarget[nnIdx] <= distThreshold {
			delIndices = append(delIndices, nnIdx)
		}
	}
	// reverse order keeps the remaining indices valid while deleting
	sort.Sort(sort.Reverse(sort.IntSlice(delIndices)))
	for _, idx := range delIndices {
		toClean.deleteAt(idx)
	}
}
