package integrators

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(f Func, h, t float64, y []float64) []float64 {
	return StepEuler(f, h, t, y)
}

// StepEuler returns y + h*f(t, y).
func StepEuler(f Func, h, t float64, y []float64) []float64 {
	dy := f(t, y)
	result := make([]float64, len(y))
	for i := range y {
		result[i] = y[i] + h*dy[i]
	}
	return result
}
