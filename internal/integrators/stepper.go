package integrators

import "fmt"

// Func is a derivative function dy/dt = f(t, y) over a flat vector.
type Func func(t float64, y []float64) []float64

// Stepper advances y by one fixed step of size h.
type Stepper interface {
	Name() string
	Step(f Func, h, t float64, y []float64) []float64
}

// New returns the stepper registered under name.
func New(name string) (Stepper, error) {
	build, err := Constructor(name)
	if err != nil {
		return nil, err
	}
	return build(), nil
}

// Constructor returns a builder of fresh steppers for name. Steppers keep
// scratch buffers, so concurrent simulators each need their own.
func Constructor(name string) (func() Stepper, error) {
	switch name {
	case "euler":
		return func() Stepper { return NewEuler() }, nil
	case "rk4", "":
		return func() Stepper { return NewRK4() }, nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

// Names lists the available steppers.
func Names() []string {
	return []string{"euler", "rk4"}
}
