// Package scheduler assigns weekly lesson blocks to a fixed (day, slot) grid for
// every class in a school. It combines bounded-depth backtracking search,
// alternative block-pattern fallbacks and a graduated constraint-relaxation
// ladder under a hard wall-clock budget, and reports full diagnostics for
// whatever it could not place.
//
// The package is pure and in-memory: all curriculum, availability and roster
// data is loaded upfront by the caller, and the accepted placements are handed
// back for persistence. Attempts are isolated, so the orchestrator may run them
// on parallel goroutines; within one attempt the search is strictly sequential.
package scheduler
