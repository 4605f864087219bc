// Package tile implements the tile boundary resolver.
//
// A tile is a fixed-size crop previously cut from a larger source raster.
// Cutting can leave near-black margins on a tile (the source's no-data border
// shows through). Resolve trims those margins and, when trimming leaves the
// tile smaller than the target size, extends the tile's box back into the
// source to recover adjacent non-dark samples.
//
// # Phases
//
// Resolve works on a Box in source coordinates and runs these steps in order,
// recomputing means from the source after every edge adjustment:
//
//  1. Trim left: drop the contiguous prefix of columns with mean <= TrimThreshold
//  2. Trim right: drop the contiguous suffix of such columns
//  3. Trim top: drop the contiguous prefix of rows with mean <= TrimThreshold
//  4. Trim bottom: drop the contiguous suffix of such rows
//  5. Truncate: an axis longer than the target loses its excess from the end
//  6. Recover columns, then rows, for any axis shorter than the target
//
// Interior dark lines are never removed; only margins are.
//
// # Recovery
//
// For an axis short by d lines, the shape of the tile's position decides how
// lines are recovered:
//
//   - End edge on the source edge, start edge interior: extend the start by d
//     at once if every one of those d lines has mean > RecoverThreshold.
//   - Start edge at 0, end edge interior: extend the end by d the same way.
//   - Both edges interior: split d into floor(d/2) before and the rest after,
//     scan outward one line at a time on each side, and hand any shortfall on
//     one side to the other. The axis is recovered only if exactly d lines
//     are admitted in total.
//   - Both edges pinned: extend the end only into an underflow buffer of at
//     least d bright lines that still lies inside the source. A box spanning
//     the whole source has none, so it stays short.
//
// The two thresholds stay distinct. A line with mean in
// (RecoverThreshold, TrimThreshold] is trimmed when it sits on a margin, yet
// admitted when it is scanned during recovery.
//
// # Cut Grid
//
// Tiles are assumed to come from a grid with step Params.Stride. On an axis of
// extent E and target T the last tile ends at G = floor((E-T)/S)*S + T, and
// E-G samples past it form the underflow buffer. A zero stride disables the
// grid: G = E and there is no underflow. The grid only sizes that buffer; an
// edge is pinned by the source edge, not by G, so a tile ending at G < E is
// interior and may recover into the samples past G.
//
// # Errors
//
// Failing to reach the target size is not an error; it is reported as the
// Failed outcome. Resolve returns an error only when its inputs violate its
// preconditions (empty source, box outside the source).
package tile
