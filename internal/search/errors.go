package search

import (
	"errors"
	"fmt"
)

// AnomalousPassError reports a pass with no usable fmax estimate. This
// occurs when the hardware description degenerated under synthesis (e.g. an
// operator was optimized to a constant), so the measurement would be
// meaningless. Fatal: the caller should dump the offending module and abort.
type AnomalousPassError struct {
	// TargetHz is the candidate frequency that produced the pass.
	TargetHz int64

	// SlackPs is the (non-negative) slack the oracle reported.
	SlackPs int64
}

// Error implements the error interface.
func (e *AnomalousPassError) Error() string {
	return fmt.Sprintf("pass at %d Hz with no fmax estimate (slack %d ps): module likely optimized to a constant", e.TargetHz, e.SlackPs)
}

// NoConvergenceError reports that the search window closed without any
// candidate ever passing. Fatal.
type NoConvergenceError struct {
	// LowHz and HighHz are the final window bounds, for diagnostics.
	LowHz  float64
	HighHz float64
}

// Error implements the error interface.
func (e *NoConvergenceError) Error() string {
	return fmt.Sprintf("no passing frequency found (final window %.0f-%.0f Hz)", e.LowHz, e.HighHz)
}

// IsAnomalousPass returns true if the error is an anomalous pass.
// Uses errors.As to handle wrapped errors.
func IsAnomalousPass(err error) bool {
	var ap *AnomalousPassError
	return errors.As(err, &ap)
}

// IsNoConvergence returns true if the error is a convergence failure.
// Uses errors.As to handle wrapped errors.
func IsNoConvergence(err error) bool {
	var nc *NoConvergenceError
	return errors.As(err, &nc)
}
