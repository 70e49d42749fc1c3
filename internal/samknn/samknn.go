// Package samknn implements a self-adjusting dual-memory kNN classifier
// for drifting data streams. A short-term memory tracks the current
// concept, a long-term memory archives consolidated past concepts, and
// every prediction is delegated to whichever memory (STM, LTM or their
// combination) has been most accurate recently.
package samknn

import (
	"fmt"

	"samstream/internal/geom"
	"samstream/internal/instance"
	"samstream/internal/knn"
	"samstream/pkg/kmeans"
	"samstream/pkg/randutil"
)

// Classifier is the SAM-kNN learner. It is not safe for concurrent use;
// in the ensemble every member owns its classifier exclusively.
//
// The prequential contract: the host calls Predict with a labeled
// instance and then Train with the *same* pointer. Pointer identity lets
// Train reuse the distance vector computed during the vote.
type Classifier struct {
	opts Options
	rng  *randutil.Rand

	header *instance.Header
	kernel *geom.Kernel
	attrs  []int

	stm *window
	ltm *window

	maxSTMSize int
	maxLTMSize int

	stmHistory []int
	ltmHistory []int
	cmHistory  []int

	distM *distMatrix

	lastVoted        *instance.Instance
	lastVotedDistSTM []float64
	lastVotedDistLTM []float64

	trainStepCount int
	predHistories  map[int][]int

	maxClassValue     int
	accCurrentConcept float64
}

func New(opts ...Option) *Classifier {
	c := &Classifier{opts: defaultOptions}
	for _, opt := range opts {
		opt(c)
	}
	if c.opts.adaptationInterval < 1 {
		c.opts.adaptationInterval = 1
	}
	if c.opts.minSTMSize < 1 {
		c.opts.minSTMSize = 1
	}
	if c.rng == nil {
		c.rng = randutil.New(0)
	}
	return c
}

// SetContext initializes the memories for a stream header. Must be called
// before the first Train or Predict, and again after Reset.
func (c *Classifier) SetContext(header *instance.Header) {
	c.header = header
	c.maxLTMSize = int(c.opts.relativeLTMSize * float64(c.opts.limit))
	c.maxSTMSize = c.opts.limit - c.maxLTMSize

	c.stm = newWindow(c.maxSTMSize)
	c.ltm = newWindow(c.maxLTMSize)
	c.stmHistory = nil
	c.ltmHistory = nil
	c.cmHistory = nil
	c.distM = newDistMatrix(c.opts.limit)
	c.predHistories = map[int][]int{}

	c.lastVoted = nil
	c.lastVotedDistSTM = nil
	c.lastVotedDistLTM = nil
	c.trainStepCount = 0
	c.maxClassValue = 0
	c.accCurrentConcept = 0

	c.attrs = make([]int, header.NumAttributes())
	for i := range c.attrs {
		c.attrs[i] = i
	}
	c.rebuildKernel()
}

// RandomizeFeatures restricts the learner to n unique attributes drawn
// uniformly from the header.
func (c *Classifier) RandomizeFeatures(n int, header *instance.Header, rng *randutil.Rand) {
	if n > header.NumAttributes() {
		n = header.NumAttributes()
	}
	c.attrs = make([]int, n)
	for j := 0; j < n; j++ {
		for {
			c.attrs[j] = rng.Intn(header.NumAttributes())
			unique := true
			for i := 0; i < j; i++ {
				if c.attrs[j] == c.attrs[i] {
					unique = false
					break
				}
			}
			if unique {
				break
			}
		}
	}
	c.rebuildKernel()
}

// Reset drops all learned state. SetContext must follow before reuse.
func (c *Classifier) Reset() {
	c.stm = nil
	c.ltm = nil
	c.stmHistory = nil
	c.ltmHistory = nil
	c.cmHistory = nil
	c.distM = nil
	c.predHistories = nil
	c.attrs = nil
	c.kernel = nil
	c.lastVoted = nil
	c.lastVotedDistSTM = nil
	c.lastVotedDistLTM = nil
}

// AfterLearning releases the buffers once the stream ends.
func (c *Classifier) AfterLearning() {
	c.Reset()
}

// K returns the configured neighbor count.
func (c *Classifier) K() int {
	return c.opts.k
}

// SetK overrides the neighbor count (ensemble randomization).
func (c *Classifier) SetK(k int) {
	c.opts.k = k
}

// AccCurrentConcept is the recent accuracy of whichever memory the
// classifier currently delegates to.
func (c *Classifier) AccCurrentConcept() float64 {
	return c.accCurrentConcept
}

func (c *Classifier) STMLen() int {
	return c.stm.len()
}

func (c *Classifier) LTMLen() int {
	return c.ltm.len()
}

// MaxClassValue is the largest class label seen so far.
func (c *Classifier) MaxClassValue() int {
	return c.maxClassValue
}

func (c *Classifier) rebuildKernel() {
	kernel, err := geom.NewKernel(c.opts.metric, c.header, c.attrs)
	if err != nil {
		// unknown metrics are rejected at config time; fall back hard
		kernel, _ = geom.NewKernel(geom.MetricEuclidean, c.header, c.attrs)
	}
	c.kernel = kernel
}

// Train absorbs one labeled instance: it enters the STM, its distance row
// is cached, the LTM is cleaned against it, and on the adaptation
// interval the STM is shrunk to the size minimizing the interleaved
// test-train error, migrating the trimmed batch into the LTM.
func (c *Classifier) Train(x *instance.Instance) {
	c.trainStepCount++
	if x.Class > c.maxClassValue {
		c.maxClassValue = x.Class
	}
	c.stm.add(x)
	c.memorySizeCheck()
	c.distM.rewriteIfNeeded(c.stm.len())

	lastIdx := c.distM.physical(c.stm.len() - 1)
	row := c.distM.cells[lastIdx]
	if x == c.lastVoted && c.lastVotedDistSTM != nil {
		copy(row[c.distM.physical(0):lastIdx], c.lastVotedDistSTM)
		row[lastIdx] = 0
	} else {
		dists := c.kernel.DistanceTo(x, c.stm.items)
		copy(row[c.distM.physical(0):], dists)
	}
	// mirror the new row into the column so the matrix stays symmetric
	for j := 0; j < c.stm.len()-1; j++ {
		c.distM.cells[c.distM.physical(j)][lastIdx] = row[c.distM.physical(j)]
	}

	c.clean(c.stm, c.ltm, true)

	if c.trainStepCount%c.opts.adaptationInterval == 0 {
		oldSize := c.stm.len()
		newSize := c.newSTMSize(c.opts.recalculateError)
		if newSize < oldSize {
			diff := oldSize - newSize
			discarded := &window{items: make([]*instance.Instance, diff)}
			copy(discarded.items, c.stm.items[:diff])
			c.stm.deleteFront(diff)
			c.distM.shift(diff)

			histDiff := len(c.stmHistory) - newSize
			if histDiff > 0 {
				c.stmHistory = c.stmHistory[histDiff:]
				c.ltmHistory = c.ltmHistory[histDiff:]
				c.cmHistory = c.cmHistory[histDiff:]
			}

			c.clean(c.stm, discarded, false)
			if c.maxLTMSize > 0 {
				for _, in := range discarded.items {
					c.ltm.add(in)
				}
			}
			c.memorySizeCheck()
		}
	}
}

// Predict returns the vote vector of the currently most accurate memory.
// The vector length is maxClassValue+1 once training has begun.
func (c *Classifier) Predict(x *instance.Instance) []float64 {
	numClasses := c.maxClassValue + 1
	var v []float64
	predSTM, predLTM, predCM := 0, 0, 0

	if c.stm.len() > 0 {
		distancesSTM := c.kernel.DistanceTo(x, c.stm.items)
		c.lastVoted = x
		c.lastVotedDistSTM = distancesSTM

		nnSTM := knn.NArgMinAll(minInt(len(distancesSTM), c.opts.k), distancesSTM)
		vSTM := knn.Votes(distancesSTM, nnSTM, c.stmLabel, numClasses, 0, c.opts.uniformWeighted)
		predSTM = knn.MaxIndex(vSTM)

		distancesLTM := c.kernel.DistanceTo(x, c.ltm.items)
		c.lastVotedDistLTM = distancesLTM
		nnLTM := knn.NArgMinAll(minInt(len(distancesLTM), c.opts.k), distancesLTM)
		vLTM := knn.Votes(distancesLTM, nnLTM, c.ltmLabel, numClasses, 0, c.opts.uniformWeighted)
		predLTM = knn.MaxIndex(vLTM)

		vCM := c.cmVotes(distancesSTM, distancesLTM, numClasses)
		predCM = knn.MaxIndex(vCM)

		correctSTM := historySum(c.stmHistory)
		correctLTM := historySum(c.ltmHistory)
		correctCM := historySum(c.cmHistory)
		histLen := float64(len(c.stmHistory))

		switch {
		case correctSTM >= correctLTM && correctSTM >= correctCM:
			v = vSTM
			c.accCurrentConcept = float64(correctSTM) / histLen
		case correctLTM > correctSTM && correctLTM >= correctCM:
			v = vLTM
			c.accCurrentConcept = float64(correctLTM) / histLen
		default:
			v = vCM
			c.accCurrentConcept = float64(correctCM) / histLen
		}
	} else {
		n := c.header.NumClasses
		v = make([]float64, n)
		for i := range v {
			v[i] = 1 / float64(n)
		}
		c.accCurrentConcept = 1 / float64(n)
	}

	c.stmHistory = append(c.stmHistory, boolToBit(predSTM == x.Class))
	c.ltmHistory = append(c.ltmHistory, boolToBit(predLTM == x.Class))
	c.cmHistory = append(c.cmHistory, boolToBit(predCM == x.Class))
	return v
}

func (c *Classifier) stmLabel(idx int) int {
	return c.stm.get(idx).Class
}

func (c *Classifier) ltmLabel(idx int) int {
	return c.ltm.get(idx).Class
}

// cmVotes treats STM and LTM as one neighbor pool: the first |STM|
// positions of the concatenated distance vector refer to the STM.
func (c *Classifier) cmVotes(distancesSTM, distancesLTM []float64, numClasses int) []float64 {
	distancesCM := make([]float64, 0, len(distancesSTM)+len(distancesLTM))
	distancesCM = append(distancesCM, distancesSTM...)
	distancesCM = append(distancesCM, distancesLTM...)
	nn := knn.NArgMinAll(minInt(len(distancesCM), c.opts.k), distancesCM)
	label := func(idx int) int {
		if idx < c.stm.len() {
			return c.stm.get(idx).Class
		}
		return c.ltm.get(idx - c.stm.len()).Class
	}
	return knn.Votes(distancesCM, nn, label, numClasses, 0, c.opts.uniformWeighted)
}

// memorySizeCheck keeps |STM|+|LTM| within the total limit: an over-full
// LTM is compressed, an over-full STM spills its oldest block into the
// LTM before compression.
func (c *Classifier) memorySizeCheck() {
	for c.stm.len()+c.ltm.len() > c.maxSTMSize+c.maxLTMSize {
		if c.ltm.len() > c.maxLTMSize {
			before := c.ltm.len()
			c.clusterDown()
			if c.ltm.len() >= before {
				// nothing left to merge (all singletons): fall back to
				// dropping the oldest archive entries to hold the bound
				c.ltm.deleteFront(c.ltm.len() - c.maxLTMSize)
			}
			continue
		}
		minShifts := minInt((c.maxSTMSize+c.maxLTMSize)/10, 200)
		numShifts := maxInt(minShifts, c.maxLTMSize-c.ltm.len()+1)
		numShifts = minInt(numShifts, c.stm.len())
		for i := 0; i < numShifts; i++ {
			if c.maxLTMSize > 0 {
				c.ltm.add(c.stm.get(0))
			}
			c.stm.deleteFront(1)
			if len(c.stmHistory) > 0 {
				c.stmHistory = c.stmHistory[1:]
				c.ltmHistory = c.ltmHistory[1:]
				c.cmHistory = c.cmHistory[1:]
			}
		}
		c.clusterDown()
		c.predHistories = map[int][]int{}
		c.distM.shift(numShifts)
		// keep a reused vote vector aligned with the surviving STM front
		if c.lastVotedDistSTM != nil && len(c.lastVotedDistSTM) >= numShifts {
			c.lastVotedDistSTM = c.lastVotedDistSTM[numShifts:]
		}
	}
}

// clusterDown halves each class subset of the LTM with weighted kMeans++.
// Singleton subsets stay untouched.
func (c *Classifier) clusterDown() {
	for class := 0; class <= c.maxClassValue; class++ {
		var idxs []int
		for i := 0; i < c.ltm.len(); i++ {
			if c.ltm.get(i).Class == class {
				idxs = append(idxs, i)
			}
		}
		if len(idxs) <= 1 {
			continue
		}

		points := make([][]float64, 0, len(idxs))
		for _, i := range idxs {
			values := c.ltm.get(i).Values
			p := make([]float64, len(values)+1)
			p[0] = 1 // uniform sample weight
			copy(p[1:], values)
			points = append(points, p)
		}
		for j := len(idxs) - 1; j >= 0; j-- {
			c.ltm.deleteAt(idxs[j])
		}

		k := (len(points) + 1) / 2
		centroids := kmeans.InitCentroids(k, points, c.rng)
		kmeans.Refine(centroids, points)
		for _, centroid := range centroids {
			c.ltm.add(instance.New(centroid, class))
		}
	}
	c.lastVotedDistLTM = nil
}

func historySum(history []int) int {
	sum := 0
	for _, e := range history {
		sum += e
	}
	return sum
}

func boolToBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// String describes the learner configuration.
func (c *Classifier) String() string {
	return fmt.Sprintf("samknn(k=%d limit=%d minSTM=%d ltm=%.2f)",
		c.opts.k, c.opts.limit, c.opts.minSTMSize, c.opts.relativeLTMSize)
}
