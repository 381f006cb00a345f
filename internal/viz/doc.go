// Package viz is a terminal viewer for a running simulation.
//
// [Model] is a Bubble Tea program that polls registry snapshots at a fixed
// frame rate, independent of the simulation driver, and draws a top-down
// braille view of the x/z plane with body trails, an energy chart and a
// per-body table. The only state it writes back is the time-scale.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+ -   - Time-scale ±0.5
//	[ ]   - Time-scale ±5
//	{ }   - Time-scale ±50
//	Tab   - Centre the view on the next body
//	j k   - Tilt towards a side-on view
//	z Z   - Zoom
//	?     - Help overlay
//
// [Pick] is a small menu used to choose a scenario before the viewer starts.
package viz
