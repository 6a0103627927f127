package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/fmax/internal/catalog"
	"github.com/roach88/fmax/internal/driver"
	"github.com/roach88/fmax/internal/runlog"
	"github.com/roach88/fmax/internal/search"
	"github.com/roach88/fmax/internal/store"
	"github.com/roach88/fmax/internal/synth"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	SamplesPath    string
	CheckpointPath string
	RunLogPath     string
	SynthServer    string
	MinFreqMHz     int64
	MaxFreqMHz     int64

	// Service overrides the synthesis client (for testing).
	// If nil, an HTTP client against SynthServer is used.
	Service synth.Service
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Characterize all samples in a catalog",
		Long: `Characterize every parameterization in a sample catalog against a
synthesis server and emit the resulting data-point set on stdout.

With --checkpoint, the data-point set is rewritten after every completed
parameterization and an interrupted run resumes where it left off, skipping
everything already recorded.

Example:
  fmax run --samples ./samples.cue --synth-server http://localhost:10000
  fmax run --samples ./samples.cue --synth-server http://localhost:10000 \
      --checkpoint ./checkpoint.yaml --min-freq-mhz 500 --max-freq-mhz 5000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCharacterization(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SamplesPath, "samples", "", "path to the CUE sample catalog (required)")
	cmd.Flags().StringVar(&opts.CheckpointPath, "checkpoint", "", "path at which to load and save checkpoints; no persistence if unset")
	cmd.Flags().StringVar(&opts.RunLogPath, "runlog", "", "path to a SQLite run log recording every oracle call; disabled if unset")
	cmd.Flags().StringVar(&opts.SynthServer, "synth-server", "", "base URL of the synthesis server (required)")
	cmd.Flags().Int64Var(&opts.MinFreqMHz, "min-freq-mhz", 500, "minimum frequency to test")
	cmd.Flags().Int64Var(&opts.MaxFreqMHz, "max-freq-mhz", 5000, "maximum frequency to test")
	_ = cmd.MarkFlagRequired("samples")

	return cmd
}

// runCharacterization is the run coordinator: it owns the data-point set and
// dedup index for the whole run and processes the catalog strictly
// sequentially, one oracle call outstanding at a time.
func runCharacterization(opts *RunOptions, cmd *cobra.Command) error {
	if opts.MinFreqMHz <= 0 || opts.MaxFreqMHz <= opts.MinFreqMHz {
		return NewExitError(ExitCommandError, "frequency bounds must satisfy 0 < min < max")
	}

	service := opts.Service
	if service == nil {
		if opts.SynthServer == "" {
			return NewExitError(ExitCommandError, "--synth-server is required")
		}
		service = synth.NewClient(opts.SynthServer)
	}

	checkpoint := store.New(opts.CheckpointPath)
	set, index, err := checkpoint.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load checkpoint", err)
	}

	slog.Info("loading catalog", "path", opts.SamplesPath)
	cat, err := catalog.Load(opts.SamplesPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	slog.Info("catalog loaded", "groups", len(cat.Samples), "points", cat.PointCount())

	drv := &driver.Driver{
		Synth:      service,
		Checkpoint: checkpoint,
		Search: search.Config{
			LowHz:  float64(opts.MinFreqMHz) * 1e6,
			HighHz: float64(opts.MaxFreqMHz) * 1e6,
		},
	}

	if opts.RunLogPath != "" {
		log, err := runlog.Open(opts.RunLogPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open run log", err)
		}
		defer func() {
			if closeErr := log.Close(); closeErr != nil {
				slog.Error("error closing run log", "error", closeErr)
			}
		}()
		drv.RunLog = log
		drv.RunID = runlog.NewRunID()
		slog.Info("run log enabled", "path", opts.RunLogPath, "run_id", drv.RunID)
	}

	// External cancellation: a signal cancels the in-flight oracle call;
	// the checkpoint already holds every completed parameterization.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case s := <-sigChan:
			slog.Info("received signal, aborting after in-flight call", "signal", s)
			cancel()
		case <-ctx.Done():
		}
	}()

	for _, group := range cat.Samples {
		for _, point := range group.Points {
			if err := drv.Characterize(ctx, set, index, group, point); err != nil {
				return runFailure(cmd, drv.Search, err)
			}
		}
	}

	if err := set.Render(cmd.OutOrStdout()); err != nil {
		return WrapExitError(ExitFailure, "failed to render dataset", err)
	}
	slog.Info("characterization complete", "points", set.Len())
	return nil
}

// runFailure prints the diagnostics a fatal condition calls for, then maps
// the error to an exit code. Every fatal condition terminates the run: a
// human restart is cheap because of the checkpoint, automatic recovery is
// not attempted.
func runFailure(cmd *cobra.Command, bounds search.Config, err error) error {
	errOut := cmd.ErrOrStderr()

	if ame, ok := driver.AsAnomalousModule(err); ok {
		fmt.Fprintf(errOut, "anomalous pass: the %s module produced a pass with no fmax estimate\n", ame.Op)
		fmt.Fprintf(errOut, "this occurs when an operator is optimized to a constant\n")
		fmt.Fprintf(errOut, "offending module:\n%s\n", ame.ModuleText)
		return WrapExitError(ExitFailure, "anomalous pass", err)
	}
	if search.IsNoConvergence(err) {
		fmt.Fprintf(errOut, "no passing frequency found in %.0f-%.0f MHz\n",
			bounds.LowHz/1e6, bounds.HighHz/1e6)
		return WrapExitError(ExitFailure, "search did not converge", err)
	}
	return WrapExitError(ExitFailure, "characterization failed", err)
}
