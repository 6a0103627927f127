package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// DefaultEpsilonHz is the search resolution used when Config.EpsilonHz is
// unset: the search stops once the window is narrower than 2 MHz.
const DefaultEpsilonHz = 2e6

// fmaxDisagreementFactor triggers window re-centering: when the requested
// candidate exceeds the oracle's own fmax estimate by this factor, bisection
// is wasting calls and the window is moved to bracket the estimate instead.
const fmaxDisagreementFactor = 1.5

// Evaluation is the oracle's verdict for one target frequency.
type Evaluation struct {
	// SlackPs is the timing margin in picoseconds; negative means the
	// target frequency was not met.
	SlackPs int64

	// FmaxHz is the oracle's own estimate of the maximum achievable
	// frequency. 0 means the oracle could not determine one.
	FmaxHz int64

	// Netlist is the synthesized netlist, opaque to the search.
	Netlist string
}

// Oracle evaluates a single target frequency. Calls block until the oracle
// returns; no timeout is imposed here.
type Oracle interface {
	Evaluate(ctx context.Context, targetHz int64) (Evaluation, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, targetHz int64) (Evaluation, error)

// Evaluate implements Oracle.
func (f OracleFunc) Evaluate(ctx context.Context, targetHz int64) (Evaluation, error) {
	return f(ctx, targetHz)
}

// Probe records one oracle evaluation and the window state at the time it
// was issued. Delivered to Config.OnProbe for run logging and tests.
type Probe struct {
	LowHz       float64
	HighHz      float64
	EpsilonHz   float64
	CandidateHz float64
	Eval        Evaluation
	Pass        bool
}

// Config holds the search bounds and resolution.
type Config struct {
	// LowHz and HighHz bound the initial search window.
	LowHz  float64
	HighHz float64

	// EpsilonHz is the minimum window width; DefaultEpsilonHz if zero.
	// It only ever shrinks during a search, never grows — after a
	// re-center narrows the window below epsilon, the tighter resolution
	// sticks even if the window later widens again.
	EpsilonHz float64

	// OnProbe, if non-nil, is invoked after every oracle evaluation.
	OnProbe func(Probe)
}

// Result is the outcome of a successful search.
type Result struct {
	// FrequencyHz is the highest candidate frequency observed to pass.
	FrequencyHz float64

	// SlackPs, OracleFmaxHz and Netlist are taken from the oracle's
	// evaluation of that candidate. SlackPs is always non-negative.
	SlackPs      int64
	OracleFmaxHz int64
	Netlist      string
}

// PeriodPs returns the clock period of the result frequency in picoseconds.
func (r Result) PeriodPs() float64 {
	return 1e12 / r.FrequencyHz
}

// Search finds the maximum passing frequency within cfg's bounds.
//
// Returns *AnomalousPassError if the oracle reports a pass with no fmax
// estimate (the synthesized module degenerated, e.g. an operator folded to a
// constant), *NoConvergenceError if the window closes without any candidate
// ever passing, and the wrapped transport error if an oracle call fails.
// None of these are retried; the caller decides what a failed run costs.
func Search(ctx context.Context, cfg Config, oracle Oracle) (Result, error) {
	low := cfg.LowHz
	high := cfg.HighHz
	epsilon := cfg.EpsilonHz
	if epsilon <= 0 {
		epsilon = DefaultEpsilonHz
	}

	var best *Result
	// One-shot candidate override set by the range-reset correction.
	override := math.NaN()

	for high-low > epsilon {
		candidate := (high + low) / 2
		if !math.IsNaN(override) {
			candidate = override
			override = math.NaN()
		}
		slog.Debug("probing",
			"low_hz", low, "high_hz", high, "epsilon_hz", epsilon,
			"candidate_hz", candidate)

		eval, err := oracle.Evaluate(ctx, int64(candidate))
		if err != nil {
			return Result{}, fmt.Errorf("evaluate %d Hz: %w", int64(candidate), err)
		}
		pass := eval.SlackPs >= 0
		if cfg.OnProbe != nil {
			cfg.OnProbe(Probe{
				LowHz: low, HighHz: high, EpsilonHz: epsilon,
				CandidateHz: candidate, Eval: eval, Pass: pass,
			})
		}

		if pass {
			if eval.FmaxHz == 0 {
				// A pass with no usable fmax estimate means the
				// module degenerated under synthesis; the whole
				// characterization is suspect.
				return Result{}, &AnomalousPassError{
					TargetHz: int64(candidate),
					SlackPs:  eval.SlackPs,
				}
			}
			slog.Info("pass",
				"period_ps", 1e12/candidate,
				"slack_ps", eval.SlackPs,
				"oracle_min_period_ps", 1e12/float64(eval.FmaxHz))
			low = candidate
			if best == nil || candidate >= best.FrequencyHz {
				best = &Result{
					FrequencyHz:  candidate,
					SlackPs:      eval.SlackPs,
					OracleFmaxHz: eval.FmaxHz,
					Netlist:      eval.Netlist,
				}
			}
			continue
		}

		if eval.FmaxHz != 0 {
			slog.Info("fail",
				"period_ps", 1e12/candidate,
				"slack_ps", eval.SlackPs,
				"oracle_min_period_ps", 1e12/float64(eval.FmaxHz))
		} else {
			slog.Info("fail, no oracle fmax estimate", "period_ps", 1e12/candidate)
		}

		oracleFmax := float64(eval.FmaxHz)
		if candidate > oracleFmax*fmaxDisagreementFactor {
			// The oracle thinks the achievable fmax is far below the
			// target; bracket its estimate instead of bisecting.
			high = oracleFmax * 1.1
			low = oracleFmax * 0.9
			if halfWidth := (high - low) / 2; halfWidth < epsilon {
				epsilon = halfWidth
			}
		} else {
			high = candidate
		}

		// Re-centering can strand the window above a later, lower
		// oracle estimate before anything has passed; reset around the
		// estimate and probe its bottom edge next.
		if best == nil && oracleFmax < low {
			slog.Warn("oracle fmax below search window, resetting range",
				"oracle_fmax_hz", eval.FmaxHz, "low_hz", low)
			high = oracleFmax * 1.1
			low = oracleFmax * 0.89
			override = low
		}
	}

	if best == nil {
		return Result{}, &NoConvergenceError{LowHz: low, HighHz: high}
	}
	slog.Info("search done",
		"frequency_hz", best.FrequencyHz,
		"slack_ps", best.SlackPs,
		"oracle_min_period_ps", 1e12/float64(best.OracleFmaxHz))
	return *best, nil
}
