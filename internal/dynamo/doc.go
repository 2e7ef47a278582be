// Package dynamo provides the core data model for compartmental simulations.
//
// A simulation advances a named set of state variables under a derivative
// function supplied by a [Model]:
//
//   - [Params]: named constants of a run
//   - [Layout]: fixed ordering of state keys, built once per run
//   - [State]: named view over the flat vector the integrators work on
//   - [Vars]: auxiliary variables and derivatives, recomputed every step
//   - [Model]: Initialize / Auxiliaries / Derivatives capability
//
// Optional capabilities are discovered by type assertion: [Validator],
// [Clamper], [ParamDeriver], [Charter] and [Describer].
//
// # Example
//
//	m := models.NewSIR()
//	s := sim.New("sir", m, models.SIRDefaults(), integrators.NewRK4())
//	result, err := s.Run(sim.Config{Dt: 0.1, Duration: 50})
//
// # Thread Safety
//
// Models hold no run state of their own beyond closures built in Initialize,
// but the simulator that owns them is NOT safe for concurrent runs.
package dynamo
