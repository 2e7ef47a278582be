package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/solution"
)

// SeparationRate fits ln|a(t)-b(t)| against t by least squares over the
// given keys and returns the slope. Steps with a missing value or a zero
// gap are left out.
func SeparationRate(times []float64, a, b *solution.Trace, keys []string) (float64, error) {
	var sumT, sumL, sumTT, sumTL float64
	n := 0

	for i := 0; i < len(times) && i < a.Len() && i < b.Len(); i++ {
		ra, rb := a.Row(i, keys), b.Row(i, keys)
		sep, ok := 0.0, true
		for j := range keys {
			if !ra[j].Valid || !rb[j].Valid {
				ok = false
				break
			}
			d := ra[j].V - rb[j].V
			sep += d * d
		}
		if !ok || sep == 0 {
			continue
		}
		l := 0.5 * math.Log(sep)
		t := times[i]
		sumT += t
		sumL += l
		sumTT += t * t
		sumTL += t * l
		n++
	}

	if n < 2 {
		return 0, ErrShortSeries
	}
	den := float64(n)*sumTT - sumT*sumT
	if den == 0 {
		return 0, ErrShortSeries
	}
	return (float64(n)*sumTL - sumT*sumL) / den, nil
}

// LyapunovExponent runs cfg twice, the second time with param scaled by
// 1+perturbation, and returns the separation rate of the state keys. A
// positive value means nearby runs drift apart.
func LyapunovExponent(reg *experiment.Registry, cfg *config.Config, param string, perturbation float64) (float64, error) {
	base, err := experiment.New(reg, cfg)
	if err != nil {
		return 0, err
	}
	p := base.GetSimulator().Params()
	if !p.Has(param) {
		return 0, fmt.Errorf("model %s has no parameter %q", cfg.Model, param)
	}

	nudged := cfg.Clone()
	nudged.SetParam(param, p[param]*(1+perturbation))
	other, err := experiment.New(reg, nudged)
	if err != nil {
		return 0, err
	}

	ra, err := base.Run()
	if err != nil {
		return 0, err
	}
	rb, err := other.Run()
	if err != nil {
		return 0, err
	}

	return SeparationRate(ra.Times, ra.Trace, rb.Trace, base.GetSimulator().Layout().Keys())
}
