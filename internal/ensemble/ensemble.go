// Package ensemble bags randomized SAM-kNN learners online: every member
// sees each instance Poisson(lambda) times, votes are weighted by each
// member's current-concept accuracy, and an ADWIN detector over the
// ensemble's own correctness stream triggers replacement of the worst
// members.
package ensemble

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"samstream/internal/drift"
	"samstream/internal/instance"
	"samstream/internal/knn"
	"samstream/internal/samknn"
	"samstream/pkg/pqueue"
	"samstream/pkg/randutil"
	"samstream/pkg/rworker"
)

type member struct {
	cls    *samknn.Classifier
	lambda float64
}

// Ensemble is driven prequentially like a single learner: Predict then
// Train with the same instance pointer. Predictions are memoized per
// pointer so the correctness check inside Train never recomputes the
// votes the caller just requested.
type Ensemble struct {
	opts       Options
	memberOpts []samknn.Option
	rng        *randutil.Rand

	header  *instance.Header
	members []*member
	adwin   *drift.ADWIN
	jobs    int

	lastVoted *instance.Instance
	lastVotes []float64

	replacements int
}

func New(opts ...Option) *Ensemble {
	e := &Ensemble{opts: defaultOptions, adwin: drift.New(drift.DefaultDelta)}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = randutil.New(0)
	}

	e.jobs = e.opts.numberOfJobs
	if e.jobs == -1 {
		e.jobs = runtime.NumCPU()
	}
	if cpus := runtime.NumCPU(); e.jobs > cpus {
		e.jobs = cpus
	}

	e.members = make([]*member, e.opts.size)
	for i := range e.members {
		e.members[i] = &member{
			cls:    e.newMemberClassifier(),
			lambda: e.opts.lambda,
		}
	}
	return e
}

func (e *Ensemble) newMemberClassifier() *samknn.Classifier {
	opts := make([]samknn.Option, 0, len(e.memberOpts)+1)
	opts = append(opts, e.memberOpts...)
	opts = append(opts, samknn.WithRand(randutil.New(e.rng.Uint32()|1)))
	return samknn.New(opts...)
}

// SetContext initializes every member for the stream header and applies
// the per-member randomization.
func (e *Ensemble) SetContext(header *instance.Header) {
	e.header = header
	for i := range e.members {
		e.members[i].cls.SetContext(header)
		e.randomizeMember(i)
	}
}

func (e *Ensemble) randomizeMember(idx int) {
	cls := e.members[idx].cls
	if e.opts.randomizeK {
		cls.SetK(e.rng.Intn(7) + 1)
	}
	if e.opts.randomizeFeatures {
		n := e.header.NumAttributes()
		nFeatures := minInt(int(math.Round(float64(n)*0.7))+1, n)
		cls.RandomizeFeatures(nFeatures, e.header, e.rng)
	}
	if e.opts.randomizeLambda {
		e.members[idx].lambda = math.Max(e.rng.Float64()*e.opts.lambda, 0.2)
	}
}

// Reset clears every member and the drift state; the ensemble needs a new
// SetContext before further use.
func (e *Ensemble) Reset() {
	for i := range e.members {
		e.members[i].cls.Reset()
		e.members[i].lambda = e.opts.lambda
	}
	e.adwin = drift.New(drift.DefaultDelta)
	e.replacements = 0
	e.lastVoted = nil
	e.lastVotes = nil
}

// Size returns the number of members.
func (e *Ensemble) Size() int {
	return len(e.members)
}

// Replacements counts members reset after a drift signal.
func (e *Ensemble) Replacements() int {
	return e.replacements
}

// DriftDetections counts ADWIN change signals.
func (e *Ensemble) DriftDetections() int {
	return e.adwin.Detections()
}

// AccCurrentConcept averages the members' current-concept accuracies,
// skipping members whose accuracy is NaN. A member that has not voted yet
// reports 0 and is included.
func (e *Ensemble) AccCurrentConcept() float64 {
	var sum float64
	var n int
	for _, m := range e.members {
		acc := m.cls.AccCurrentConcept()
		if math.IsNaN(acc) {
			continue
		}
		sum += acc
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Train feeds the instance to each member Poisson(lambda) many times
// (zero draws skip the member), joins the worker pool, then updates the
// drift detector with the ensemble's own correctness on the instance. A
// failed training worker is fatal: a member that crashed mid-train is
// unusable.
func (e *Ensemble) Train(ctx context.Context, x *instance.Instance) error {
	if e.jobs > 1 {
		var wg sync.WaitGroup
		rate := make(chan struct{}, e.jobs)
		errCh := make(chan error, 1)
		for _, m := range e.members {
			if e.rng.Poisson(m.lambda) == 0 {
				continue
			}
			m := m
			rworker.Job(&wg, func() error {
				m.cls.Train(x)
				return nil
			}, rate, errCh)
		}
		wg.Wait()
		select {
		case err := <-errCh:
			return fmt.Errorf("ensemble train: %w", err)
		default:
		}
	} else {
		for _, m := range e.members {
			if e.rng.Poisson(m.lambda) > 0 {
				m.cls.Train(x)
			}
		}
	}

	if e.opts.noDriftDetection {
		return nil
	}
	outcome := 1.0
	if knn.MaxIndex(e.Predict(x)) == x.Class {
		outcome = 0
	}
	if e.adwin.Add(outcome) {
		e.replaceWorstMembers()
	}
	return nil
}

// replaceWorstMembers resets the max(size/10, 1) members with the highest
// current-concept error and re-randomizes them. A member is never picked
// twice in one pass.
func (e *Ensemble) replaceWorstMembers() {
	nRemovals := maxInt(len(e.members)/10, 1)
	worst := pqueue.New(pqueue.WithOrderDesc(), pqueue.WithCap(uint(nRemovals)))
	for i, m := range e.members {
		memberError := 1 - m.cls.AccCurrentConcept()
		if math.IsNaN(memberError) || memberError <= 0 {
			continue
		}
		worst.Push(i, memberError)
	}
	for _, v := range worst.PopAll() {
		idx := v.(int)
		e.members[idx].cls.Reset()
		e.members[idx].cls.SetContext(e.header)
		e.randomizeMember(idx)
		e.replacements++
	}
}

// Predict returns the performance-weighted combined vote. The result is
// memoized per instance pointer, so the prequential predict-then-train
// sequence computes member votes once.
func (e *Ensemble) Predict(x *instance.Instance) []float64 {
	if e.lastVoted == x {
		return e.lastVotes
	}
	e.lastVoted = x

	votes := make([][]float64, len(e.members))
	if e.jobs > 1 {
		rate := make(chan struct{}, e.jobs)
		g, _ := errgroup.WithContext(context.Background())
		for i, m := range e.members {
			i, m := i, m
			g.Go(func() error {
				rate <- struct{}{}
				defer func() { <-rate }()
				votes[i] = m.cls.Predict(x)
				return nil
			})
		}
		// members cannot fail here; a nil slot falls through to a zero vote
		_ = g.Wait()
	} else {
		for i, m := range e.members {
			votes[i] = m.cls.Predict(x)
		}
	}

	var combined []float64
	for i := range votes {
		combined = e.addMemberVote(combined, votes[i], e.members[i])
	}
	e.lastVotes = combined
	return combined
}

// addMemberVote normalizes a member's vote to sum 1, scales it by the
// member's current-concept accuracy unless weighting is disabled, and
// accumulates it.
func (e *Ensemble) addMemberVote(combined, vote []float64, m *member) []float64 {
	if vote == nil {
		return combined
	}
	var sum float64
	for _, v := range vote {
		sum += v
	}
	if sum <= 0 {
		return combined
	}
	acc := m.cls.AccCurrentConcept()
	scale := 1 / sum
	if !e.opts.disableWeightedVote && acc > 0 {
		scale *= acc
	}
	for len(combined) < len(vote) {
		combined = append(combined, 0)
	}
	for i, v := range vote {
		combined[i] += v * scale
	}
	return combined
}

// AfterLearning releases every member's buffers.
func (e *Ensemble) AfterLearning() {
	for _, m := range e.members {
		m.cls.AfterLearning()
	}
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
