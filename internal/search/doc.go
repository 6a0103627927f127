// Package search implements the adaptive frequency search: given bounds and
// a synthesis oracle, it finds the highest clock frequency at which the
// oracle reports timing closure, within a configured resolution.
//
// The algorithm is bisection with two oracle-informed accelerations. When the
// oracle's own fmax estimate is far below the requested target, the window is
// re-centered around that estimate instead of narrowing one half at a time.
// When re-centering has pushed the window above a later, lower estimate
// before any candidate has passed, the window is reset around the estimate.
// Oracle calls cost seconds to minutes each, so both branches exist to cut
// call count; they are first-class algorithm steps, not recovery paths.
//
// The search is a pure function of (bounds, oracle): it holds no global
// state and is independently testable with a scripted oracle.
package search
