// Package viz draws runs in the terminal.
//
// Static output goes through asciigraph ([RenderSeries], [RenderChart]) and
// a Braille [Canvas] for phase plots. Interactive output is built on Bubble
// Tea:
//
//   - [Replay]: scrub through a finished or stored trace
//   - [Browser]: pick a model, edit its parameters, run it, then replay it
//
// # Key Bindings
//
//	Left/Right - Step backward/forward
//	Home/End   - Jump to the first/last step
//	Space      - Play/Pause
//	Tab        - Focus the next series
//	T          - Cycle color themes
//	Esc        - Back to the parameter editor (browser only)
package viz
