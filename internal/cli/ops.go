package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reqstore/internal/mutate"
)

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "ops",
		Short:         "List the mutation operations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			ops := mutate.Operations()
			if formatter.Format == "json" {
				return formatter.Success(map[string]any{"operations": ops})
			}
			for _, op := range ops {
				fmt.Fprintln(formatter.Writer, op)
			}
			return nil
		},
	}
}
