package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fmax/internal/catalog"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Groups int    `json:"groups,omitempty"`
	Points int    `json:"points,omitempty"`
	Error  string `json:"error,omitempty"`
}

// String renders the text form of the result.
func (r ValidationResult) String() string {
	if !r.Valid {
		return "invalid: " + r.Error
	}
	return fmt.Sprintf("valid: %d group(s), %d point(s)", r.Groups, r.Points)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <samples-file>",
		Short: "Validate a sample catalog without running synthesis",
		Long: `Validate a CUE sample catalog: syntax, known operations, recognized
specializations, attribute shape, and width constraints. No synthesis server
is contacted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cat, err := catalog.Load(path)
	if err != nil {
		code := catalog.ErrCodeInvalid
		var le *catalog.LoadError
		if errors.As(err, &le) {
			code = le.Code
		}
		if ferr := formatter.Error(code, err.Error()); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "catalog validation failed", err)
	}

	return formatter.Success(ValidationResult{
		Valid:  true,
		Groups: len(cat.Samples),
		Points: cat.PointCount(),
	})
}
