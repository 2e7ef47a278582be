// Package analysis characterises finished runs.
//
//   - [DominantPeriod]: cycle length of a series from its power spectrum
//   - [NewPhasePortrait]: one recorded key against another
//   - [Crossings]: times a series passes upward through a threshold
//   - [BifurcationDiagram]: long-run values of a key across a parameter range
//   - [LyapunovExponent]: growth rate of the gap between two nearby runs
//
// Oscillating models are the usual subject:
//
//	period, err := analysis.DominantPeriod(result.Times, result.Trace.Floats("prey"))
package analysis
