// Package driver runs one parameterization end to end: dedup check, module
// generation, frequency search, delay conversion, and the checkpointed
// append. It owns the order of those steps; the algorithm lives in search
// and the persistence in store.
package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/fmax/internal/catalog"
	"github.com/roach88/fmax/internal/points"
	"github.com/roach88/fmax/internal/runlog"
	"github.com/roach88/fmax/internal/search"
	"github.com/roach88/fmax/internal/sig"
	"github.com/roach88/fmax/internal/store"
	"github.com/roach88/fmax/internal/synth"
)

// The generator always names the wrapping module "top".
const topModuleName = "top"

// Driver characterizes parameterizations one at a time. Strictly sequential:
// one oracle call outstanding, one parameterization in flight. Not safe for
// concurrent use; the run coordinator owns it.
type Driver struct {
	Synth      synth.Service
	Checkpoint *store.Checkpoint

	// Search carries the frequency bounds for every search.
	Search search.Config

	// RunLog, if non-nil, records every oracle call under RunID.
	RunLog *runlog.Log
	RunID  string
}

// Characterize measures one parameterization and appends the result to set,
// persisting the checkpoint before returning. If the parameterization's
// signature is already in the index this is an idempotent no-op with no
// external calls. Nothing is appended on any error, so an interrupted or
// failed parameterization is never half-recorded.
func (d *Driver) Characterize(ctx context.Context, set *points.Set, index *sig.Index, group catalog.OpSamples, point catalog.Parameterization) error {
	sgn := point.Signature(group.Op, group.Specialization)
	if index.Contains(sgn) {
		slog.Debug("already characterized, skipping", "signature", sgn.String())
		return nil
	}

	opName, ok := catalog.GeneratorName(group.Op)
	if !ok {
		// Catalog validation rejects unknown ops, but the driver is
		// also used directly by tests.
		return fmt.Errorf("unknown operation %q", group.Op)
	}
	slog.Info("characterizing", "op", group.Op, "signature", sgn.String())

	moduleText, err := d.generateModule(ctx, opName, group, point)
	if err != nil {
		return err
	}

	cfg := d.Search
	cfg.OnProbe = d.probeRecorder(ctx, sgn)
	oracle := search.OracleFunc(func(ctx context.Context, targetHz int64) (search.Evaluation, error) {
		resp, err := d.Synth.Compile(ctx, synth.CompileRequest{
			TargetFrequencyHz: targetHz,
			ModuleText:        moduleText,
			TopModuleName:     topModuleName,
		})
		if err != nil {
			return search.Evaluation{}, err
		}
		return search.Evaluation{
			SlackPs: resp.SlackPs,
			FmaxHz:  resp.MaxFrequencyHz,
			Netlist: resp.Netlist,
		}, nil
	})

	res, err := search.Search(ctx, cfg, oracle)
	if err != nil {
		if search.IsAnomalousPass(err) {
			return &AnomalousModuleError{Op: group.Op, ModuleText: moduleText, Err: err}
		}
		return fmt.Errorf("search for %s: %w", sgn, err)
	}

	var delayPs int64
	if res.FrequencyHz > 0 {
		delayPs = int64(1e12 / res.FrequencyHz)
	}

	set.Add(points.DataPoint{Signature: sgn, DelayPs: delayPs})
	index.Add(sgn)
	if err := d.Checkpoint.Save(set); err != nil {
		return fmt.Errorf("checkpoint after %s: %w", sgn, err)
	}
	slog.Info("characterized", "op", group.Op, "delay_ps", delayPs, "frequency_hz", res.FrequencyHz)
	return nil
}

// generateModule asks the module generator for the parameterized operator
// and prepends the diagnostic comment identifying the operation.
func (d *Driver) generateModule(ctx context.Context, opName string, group catalog.OpSamples, point catalog.Parameterization) (string, error) {
	attrKey, attrValue, err := group.Attribute(point.ResultWidth)
	if err != nil {
		return "", fmt.Errorf("%s: %w", group.Op, err)
	}

	elementsByOperand := make(map[int64][]int64, len(point.OperandElementCounts))
	for _, oe := range point.OperandElementCounts {
		elementsByOperand[oe.OperandNumber] = oe.ElementCounts
	}
	operandTypes := make([]string, len(point.OperandWidths))
	for i, w := range point.OperandWidths {
		operandTypes[i] = synth.TypeDescriptor(w, elementsByOperand[int64(i)])
	}

	var repeated *int64
	if group.Specialization == sig.OperandsIdentical {
		one := int64(1)
		repeated = &one
	}

	moduleText, err := d.Synth.GenerateModule(ctx, synth.GenerateRequest{
		OpName:          opName,
		ResultType:      synth.TypeDescriptor(point.ResultWidth, point.ResultElementCounts),
		OperandTypes:    operandTypes,
		AttributeKey:    attrKey,
		AttributeValue:  attrValue,
		RepeatedOperand: repeated,
	})
	if err != nil {
		return "", fmt.Errorf("generate module for %s: %w", group.Op, err)
	}
	return fmt.Sprintf("// op: %s\n%s", group.Op, moduleText), nil
}

// probeRecorder returns a probe hook writing to the run log, or nil when no
// run log is configured. Log write failures must not kill a multi-hour run.
func (d *Driver) probeRecorder(ctx context.Context, sgn sig.Signature) func(search.Probe) {
	if d.RunLog == nil {
		return nil
	}
	key := string(sgn.Key())
	return func(p search.Probe) {
		err := d.RunLog.Record(ctx, runlog.Call{
			RunID:        d.RunID,
			SignatureKey: key,
			Op:           sgn.Op,
			TargetHz:     int64(p.CandidateHz),
			SlackPs:      p.Eval.SlackPs,
			FmaxHz:       p.Eval.FmaxHz,
			Pass:         p.Pass,
		})
		if err != nil {
			slog.Warn("run log write failed", "error", err)
		}
	}
}
