package forecast

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// PredictionResult is one generated forecast. Factors is a fresh slice, so
// callers can hold on to a result without aliasing the Factors table.
type PredictionResult struct {
	Date         time.Time `json:"date"`
	Confidence   float64   `json:"confidence"`
	Factors      []string  `json:"factors"`
	ModelVersion string    `json:"model_version"`
	DeathReason  string    `json:"death_reason"`
}

// Generator turns random draws into predictions.
type Generator struct {
	mu  sync.Mutex
	src Source
}

// NewGenerator returns a Generator reading from src, or from the process-wide
// random source when src is nil.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = globalSource{}
	}
	return &Generator{src: src}
}

var defaultGenerator = NewGenerator(nil)

// Generate produces a prediction from the process-wide random source.
func Generate() PredictionResult {
	return defaultGenerator.Generate()
}

// Generate consumes seven draws, in order: date, confidence, factor count,
// major, minor, patch, reason.
func (g *Generator) Generate() PredictionResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	return PredictionResult{
		Date:         g.randomDate(),
		Confidence:   g.confidence(),
		Factors:      g.factors(),
		ModelVersion: g.modelVersion(),
		DeathReason:  g.deathReason(),
	}
}

// RandomDate picks an instant in [RangeStart, RangeEnd) at millisecond
// resolution.
func (g *Generator) RandomDate() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.randomDate()
}

// Confidence returns a percentage in [80, 100).
func (g *Generator) Confidence() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.confidence()
}

// Factors returns the first 4 to 7 entries of the Factors table.
func (g *Generator) Factors() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.factors()
}

// ModelVersion returns "v{1-10}.{0-9}.{0-9}".
func (g *Generator) ModelVersion() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.modelVersion()
}

// DeathReason returns one entry of DeathReasons.
func (g *Generator) DeathReason() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deathReason()
}

func (g *Generator) randomDate() time.Time {
	span := RangeEnd.Sub(RangeStart).Milliseconds()
	offset := int64(g.draw() * float64(span))
	return RangeStart.Add(time.Duration(offset) * time.Millisecond)
}

func (g *Generator) confidence() float64 {
	c := g.draw()*confidenceSpread + minConfidence
	// Draws just below 1 can round up to the upper bound.
	if c >= minConfidence+confidenceSpread {
		c = math.Nextafter(minConfidence+confidenceSpread, 0)
	}
	return c
}

func (g *Generator) factors() []string {
	k := g.pick(factorsSpread) + minFactors
	out := make([]string, k)
	copy(out, Factors[:k])
	return out
}

func (g *Generator) modelVersion() string {
	major := g.pick(10) + 1
	minor := g.pick(10)
	patch := g.pick(10)
	return fmt.Sprintf("v%d.%d.%d", major, minor, patch)
}

func (g *Generator) deathReason() string {
	return DeathReasons[g.pick(len(DeathReasons))]
}

// draw keeps a misbehaving source inside [0,1).
func (g *Generator) draw() float64 {
	r := g.src.Float64()
	if r < 0 || math.IsNaN(r) {
		return 0
	}
	if r >= 1 {
		return math.Nextafter(1, 0)
	}
	return r
}

// pick returns a uniform integer in [0,n).
func (g *Generator) pick(n int) int {
	i := int(g.draw() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
