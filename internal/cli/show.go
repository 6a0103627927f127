package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/fmax/internal/store"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <checkpoint-file>",
		Short: "Render a checkpoint as the final dataset form",
		Long: `Render an existing checkpoint to stdout in the same form the run
command emits: the schema comment lines followed by the data-point set.
Useful for inspecting a partially-built dataset mid-run.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args[0], cmd)
		},
	}
	return cmd
}

func runShow(path string, cmd *cobra.Command) error {
	set, _, err := store.New(path).Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load checkpoint", err)
	}
	if err := set.Render(cmd.OutOrStdout()); err != nil {
		return WrapExitError(ExitFailure, "failed to render dataset", err)
	}
	return nil
}
