package tasktype

import (
	"math/rand/v2"
	"sync"
)

// Weighter draws a task type for a word's progress. It is safe for
// concurrent use.
type Weighter struct {
	cfg Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewWeighter creates a Weighter with a randomly seeded source.
func NewWeighter(cfg Config) *Weighter {
	return NewWeighterWithRand(cfg, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewWeighterWithRand creates a Weighter that draws from rng.
func NewWeighterWithRand(cfg Config, rng *rand.Rand) *Weighter {
	return &Weighter{cfg: cfg, rng: rng}
}

// Config returns the weight table in use.
func (w *Weighter) Config() Config {
	return w.cfg
}

// Choose draws a task type from the band for progress. Each call is
// independent of previous draws.
func (w *Weighter) Choose(progress int) Type {
	weights := w.cfg.ForProgress(progress)

	w.mu.Lock()
	r := w.rng.Float64() * weights.Total()
	w.mu.Unlock()

	for _, t := range All {
		r -= weights.Of(t)
		if r < 0 {
			return t
		}
	}
	// Float rounding can leave r at exactly zero; fall back to the band's
	// favored type.
	return weights.favored()
}
