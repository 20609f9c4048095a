package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reqstore/internal/record"
	"github.com/roach88/reqstore/internal/validate"
)

// ValidationResult holds full-store validation results.
type ValidationResult struct {
	Valid    bool                 `json:"valid"`
	Blocking []validate.Violation `json:"blocking,omitempty"`
	Warnings []validate.Violation `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var withWarnings bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the full store",
		Long: `Run full-store validation: schema shape, identifier formats and
uniqueness, reference integrity, version chain coherence, temporal order,
and story completeness. Blocking violations exit 1.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, withWarnings, cmd)
		},
	}

	cmd.Flags().BoolVar(&withWarnings, "warnings", false, "also report warning-severity violations")

	return cmd
}

func runValidate(opts *RootOptions, withWarnings bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	e, err := loadEnv(opts)
	if err != nil {
		return outputStoreError(formatter, err)
	}
	snap, err := e.store.LoadAll()
	if err != nil {
		return outputStoreError(formatter, err)
	}

	formatter.VerboseLog("Validating store at %s", e.store.DataDir())

	violations := validate.Check(snap, validate.Options{IncludeWarnings: withWarnings})
	result := ValidationResult{
		Blocking: validate.Blocking(violations),
		Warnings: validate.Warnings(violations),
	}
	result.Valid = len(result.Blocking) == 0

	if !result.Valid {
		return outputViolations(formatter, result)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✓ Store valid")
		for _, w := range result.Warnings {
			fmt.Fprintf(formatter.Writer, "  warning %s\n", w)
		}
	}
	return nil
}

func outputViolations(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		_ = formatter.Error(string(record.CodeValidationRejected),
			fmt.Sprintf("%d blocking violation(s)", len(result.Blocking)), result)
		return NewExitError(ExitFailure,
			fmt.Sprintf("validation failed with %d blocking violation(s)", len(result.Blocking)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, v := range result.Blocking {
		fmt.Fprintf(formatter.Writer, "  %s\n", v)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning %s\n", w)
	}
	return NewExitError(ExitFailure,
		fmt.Sprintf("validation failed with %d blocking violation(s)", len(result.Blocking)))
}

// outputStoreError reports an infrastructure or domain error and converts
// it to the matching exit code.
func outputStoreError(formatter *OutputFormatter, err error) error {
	code := record.CodeOf(err)
	if code == "" {
		code = record.CodeIO
	}
	_ = formatter.Error(string(code), err.Error(), nil)
	return &ExitError{Code: exitCodeFor(code), Message: err.Error(), Err: err}
}
