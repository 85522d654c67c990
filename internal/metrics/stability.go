package metrics

import (
	"math"

	"github.com/san-kum/chainsim/internal/dynamo"
)

// Stability is the fraction of observed ticks in which no bob spun faster
// than threshold rad/s.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) OnStep(x dynamo.State, t float64) {
	s.samples++
	for _, omega := range x.Omega() {
		if math.Abs(omega) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
