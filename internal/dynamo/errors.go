package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a non-positive step size, duration or cutoff.
	ErrInvalidConfig = errors.New("dynamo: invalid simulation config")

	// ErrInvalidRange indicates an integration range whose end is not after its start.
	ErrInvalidRange = errors.New("dynamo: end of range must be greater than its start")

	// ErrStepDivisibility indicates a range that is not a whole number of steps.
	ErrStepDivisibility = errors.New("dynamo: range is not divisible by the step size")

	// ErrUndefinedRate indicates a flow edge whose rate names no auxiliary or parameter.
	ErrUndefinedRate = errors.New("dynamo: flow rate reference is not defined")

	// ErrUnknownCompartment indicates a flow edge endpoint that is not a state key.
	ErrUnknownCompartment = errors.New("dynamo: flow endpoint is not a state variable")

	// ErrDerivativeKeys indicates derivatives that do not cover exactly the state keys.
	ErrDerivativeKeys = errors.New("dynamo: derivative keys do not match state keys")

	// ErrEmptyState indicates a model that initialized no state variables.
	ErrEmptyState = errors.New("dynamo: model initialized no state variables")

	// ErrUnknownParam indicates a parameter name the model does not define.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")
)

// ConsistencyError reports a model whose declarations disagree with what it
// computes. It is returned before any stepping happens.
type ConsistencyError struct {
	Key     string
	Detail  string
	Wrapped error
}

func (e *ConsistencyError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %q", e.Wrapped, e.Key)
	}
	return fmt.Sprintf("%v: %q (%s)", e.Wrapped, e.Key, e.Detail)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Wrapped
}

// SimError wraps an error with the step that produced it.
type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
