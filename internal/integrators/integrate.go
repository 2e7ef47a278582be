package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/popsim/internal/dynamo"
)

// Steps returns the number of whole steps of size h in [t0, t1]. The range
// must be increasing and an exact multiple of h.
func Steps(t0, t1, h float64) (int, error) {
	if t1 <= t0 {
		return 0, fmt.Errorf("%w: [%g, %g]", dynamo.ErrInvalidRange, t0, t1)
	}
	if h <= 0 {
		return 0, fmt.Errorf("%w: step size %g", dynamo.ErrInvalidConfig, h)
	}
	n := (t1 - t0) / h
	rounded := math.Round(n)
	if math.Abs(n-rounded) > 1e-9*math.Max(1, rounded) {
		return 0, fmt.Errorf("%w: %g / %g = %g", dynamo.ErrStepDivisibility, t1-t0, h, n)
	}
	return int(rounded), nil
}

// Integrate steps y0 from t0 to t1 and returns every vector, y0 included.
// Range errors are reported before f is ever called.
func Integrate(s Stepper, f Func, y0 []float64, t0, t1, h float64) ([][]float64, error) {
	n, err := Steps(t0, t1, h)
	if err != nil {
		return nil, err
	}

	y := make([]float64, len(y0))
	copy(y, y0)
	out := make([][]float64, 0, n+1)
	out = append(out, y)

	for i := 0; i < n; i++ {
		t := t0 + float64(i)*h
		y = s.Step(f, h, t, y)
		out = append(out, y)
	}
	return out, nil
}
