// Package sig defines operation signatures — the canonical identity of a
// characterization sample — and the dedup index built over them.
//
// A signature captures everything that distinguishes one synthesized operator
// implementation from another: the operation, the result width, the ordered
// operand widths (with element counts for array operands), and the structural
// specialization. Two signatures are equal iff all fields match, and the
// canonical key is a pure function of those fields, so re-running a catalog
// against a checkpoint deduplicates correctly across process restarts.
package sig
