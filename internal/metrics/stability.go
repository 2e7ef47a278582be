package metrics

import (
	"math"

	"github.com/san-kum/popsim/internal/dynamo"
)

// negativeSlack tolerates round-off below zero before a compartment counts
// as negative.
const negativeSlack = 1e-9

// Stability is the share of observed steps on which every state value is
// finite, no larger than the ceiling and not negative. Negative stocks are
// what an unclamped model produces when a step overshoots.
type Stability struct {
	ceiling    float64
	bad, total int
	first      float64
}

func NewStability(ceiling float64) *Stability {
	return &Stability{ceiling: ceiling, first: math.NaN()}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Ceiling() float64 { return s.ceiling }

func (s *Stability) Observe(x dynamo.State, aux dynamo.Vars, t float64) {
	s.total++
	for _, v := range x.Values() {
		if !isFinite(v) || v > s.ceiling || v < -negativeSlack {
			s.bad++
			if math.IsNaN(s.first) {
				s.first = t
			}
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.total == 0 {
		return 1
	}
	return float64(s.total-s.bad) / float64(s.total)
}

// FirstViolation returns the time of the first bad step, or NaN.
func (s *Stability) FirstViolation() float64 { return s.first }

func (s *Stability) Reset() {
	s.bad, s.total = 0, 0
	s.first = math.NaN()
}
