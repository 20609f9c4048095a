package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reqstore/internal/journal"
)

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "log",
		Short:         "Show recent mutations from the journal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(rootOpts, limit, cmd)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")

	return cmd
}

func runLog(opts *RootOptions, limit int, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	e, err := loadEnv(opts)
	if err != nil {
		return outputStoreError(formatter, err)
	}

	j, err := journal.Open(e.journalPath)
	if err != nil {
		return outputStoreError(formatter, err)
	}
	defer j.Close()

	entries, err := j.Tail(context.Background(), limit)
	if err != nil {
		return outputStoreError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"entries": entries})
	}
	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "journal is empty")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(formatter.Writer, "%s  %-24s  %s\n", entry.AppliedAt, entry.Op, entry.Message)
	}
	return nil
}
