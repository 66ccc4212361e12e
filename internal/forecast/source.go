package forecast

import (
	"math/rand/v2"
	"sync"
)

// Source yields uniform draws in [0,1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// NewSeededSource returns a reproducible source. A zero seed means the
// process-wide random source.
func NewSeededSource(seed int64) Source {
	if seed == 0 {
		return globalSource{}
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// FixedSource replays a fixed sequence of draws, wrapping around when it
// runs out. An empty FixedSource always yields 0.
type FixedSource struct {
	mu    sync.Mutex
	draws []float64
	next  int
}

func NewFixedSource(draws ...float64) *FixedSource {
	return &FixedSource{draws: draws}
}

func (f *FixedSource) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.draws) == 0 {
		return 0
	}
	v := f.draws[f.next%len(f.draws)]
	f.next++
	return v
}
