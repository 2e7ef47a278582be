// Package flow builds derivatives for compartmental models from declared
// transfers between state variables.
//
// Each [Edge] moves rate × state[From] per unit time from From to To, so
// edges between distinct compartments conserve the total population. An
// edge whose endpoints coincide is a sink: it removes its contribution once
// and does not cancel. Growth or death terms that are not transfers belong in
// [External].
//
// Rates name either an auxiliary variable ([Model.AuxFlows]) or a parameter
// ([Model.ParamFlows]). [Model.Validate] rejects undefined names before a
// run starts.
package flow
