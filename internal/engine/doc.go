// Package engine recomputes stale nodes of a dataflow.Graph.
//
// A run is split in three phases so the graph is only ever touched by the
// editor's event loop:
//
//  1. NewPlan walks the graph in topological order on the loop and captures
//     what each step needs: its plugin, its parents, its revision and the
//     cached results of clean parents.
//  2. Execute runs the dirty steps of the plan, usually on a worker
//     goroutine, and reports every state change as an Update.
//  3. Apply commits each Update back to the graph on the loop. Updates whose
//     revision no longer matches the node are dropped, so edits made while
//     a run was in flight leave the affected nodes dirty.
//
// A failure stops its branch: every descendant of a failed step is skipped
// and stays dirty. Runner enforces a single active run at a time. Runs
// cannot be cancelled once started.
package engine
