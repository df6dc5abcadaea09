// sim/sampler.go
//
// Stochastic inputs for the pipeline: Poisson arrival counts, Beta yield
// rates, uniform dwell times. Sampling sits behind the small Sampler
// interface so tests can inject deterministic sequences for golden-output
// comparisons.

package sim

import (
	"hash/fnv"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler supplies the three variate families the simulation draws from.
type Sampler interface {
	// Poisson returns a sample from a Poisson distribution with the given mean.
	Poisson(mean float64) int
	// Beta returns a sample in [0, 1] from a Beta(alpha, beta) distribution.
	Beta(alpha, beta float64) float64
	// Uniform returns a sample in [lo, hi).
	Uniform(lo, hi float64) float64
}

// Stochastic subsystems. Each gets an independently seeded source so drawing
// from one never perturbs another; two runs with the same master seed and
// identical configuration produce identical results.
const (
	SubsystemArrivals  = "arrivals"
	SubsystemScreening = "screening"
	SubsystemHatching  = "hatching"
	SubsystemGrowOut   = "growout"
)

// Samplers bundles one Sampler per stochastic subsystem.
type Samplers struct {
	Arrivals  Sampler
	Screening Sampler
	Hatching  Sampler
	GrowOut   Sampler
}

// NewSamplers derives the per-subsystem samplers from a master seed using the
// masterSeed XOR fnv1a64(subsystemName) formula.
func NewSamplers(seed int64) *Samplers {
	return &Samplers{
		Arrivals:  newVariateSampler(seed, SubsystemArrivals),
		Screening: newVariateSampler(seed, SubsystemScreening),
		Hatching:  newVariateSampler(seed, SubsystemHatching),
		GrowOut:   newVariateSampler(seed, SubsystemGrowOut),
	}
}

// variateSampler implements Sampler on gonum's distuv distributions.
// Not thread-safe; the cooperative scheduler guarantees single-goroutine use.
type variateSampler struct {
	src exprand.Source
}

func newVariateSampler(seed int64, subsystem string) *variateSampler {
	derived := uint64(seed) ^ uint64(fnv1a64(subsystem))
	return &variateSampler{src: exprand.NewSource(derived)}
}

func (s *variateSampler) Poisson(mean float64) int {
	if mean <= 0 {
		return 0
	}
	d := distuv.Poisson{Lambda: mean, Src: s.src}
	return int(d.Rand())
}

func (s *variateSampler) Beta(alpha, beta float64) float64 {
	d := distuv.Beta{Alpha: alpha, Beta: beta, Src: s.src}
	return d.Rand()
}

func (s *variateSampler) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	d := distuv.Uniform{Min: lo, Max: hi, Src: s.src}
	return d.Rand()
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
