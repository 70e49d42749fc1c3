package randutil

import (
	"math"

	"github.com/valyala/fastrand"
)

// Rand is a small deterministic PRNG built on fastrand's xorshift core,
// extended with the float and Poisson helpers the learners need. Not safe
// for concurrent use; every consumer owns its own instance.
type Rand struct {
	rng      fastrand.RNG
	spare    float64
	hasSpare bool
}

// New returns a generator seeded with the given value. A zero seed falls
// back to an OS-provided one.
func New(seed uint32) *Rand {
	r := &Rand{}
	r.rng.Seed(seed)
	return r
}

func (r *Rand) Uint32() uint32 {
	return r.rng.Uint32()
}

// Intn returns a non-negative value below n.
func (r *Rand) Intn(n int) int {
	return int(r.rng.Uint32n(uint32(n)))
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.rng.Uint32()) / (1 << 32)
}

// NormFloat64 returns a standard normal deviate (Box-Muller).
func (r *Rand) NormFloat64() float64 {
	if r.hasSpare {
		r.hasSpare = false
		return r.spare
	}
	u := 1 - r.Float64()
	v := r.Float64()
	mag := math.Sqrt(-2 * math.Log(u))
	r.spare = mag * math.Sin(2*math.Pi*v)
	r.hasSpare = true
	return mag * math.Cos(2*math.Pi*v)
}

// Poisson draws a sample from a Poisson distribution with the given rate.
// Small rates use the inverse-CDF walk, large ones a normal approximation.
func (r *Rand) Poisson(lambda float64) int {
	if lambda < 100.0 {
		product := 1.0
		sum := 1.0
		threshold := r.Float64() * math.Exp(lambda)
		i := 1
		max := int(math.Max(100, 10*math.Ceil(lambda)))
		for i < max && sum <= threshold {
			product *= lambda / float64(i)
			sum += product
			i++
		}
		return i - 1
	}
	x := lambda + math.Sqrt(lambda)*r.NormFloat64()
	if x < 0 {
		return 0
	}
	return int(math.Floor(x))
}
