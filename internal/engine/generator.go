package engine

import (
	"math/rand"
	"time"

	"guardian-monitor/internal/models"
)

// VitalsSource proposes the next simulated reading from the previous one.
type VitalsSource interface {
	Next(prev models.Vitals) models.Vitals
}

// Generator drifts vitals with a bounded random walk. The random source is
// injected so tests can run it deterministically.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator over rng. A nil rng gets a time-seeded one.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Next produces the next reading from prev. A heart rate already above 120
// holds unchanged until the episode is resolved; otherwise each field moves
// by a small random delta and is clamped to its physiological band.
func (g *Generator) Next(prev models.Vitals) models.Vitals {
	next := models.Vitals{
		HeartRate: clamp(prev.HeartRate+g.delta(-5, 5), 60, 110),
		Systolic:  clamp(prev.Systolic+g.delta(-4, 4), 100, 180),
		Oxygen:    clamp(prev.Oxygen+g.delta(-1, 1), 88, 100),
	}
	if prev.HeartRate > 120 {
		next.HeartRate = prev.HeartRate
	}
	return next
}

// delta returns a uniform random integer in [min, max].
func (g *Generator) delta(min, max int) int {
	return g.rng.Intn(max-min+1) + min
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
