package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/reqstore/internal/graph"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "graph",
		Short:         "Rebuild the reference graph projection",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebuild(rootOpts, cmd, true, false)
		},
	}
}

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "index",
		Short:         "Rebuild the lookup index projection",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebuild(rootOpts, cmd, false, true)
		},
	}
}

// NewRebuildCommand creates the rebuild command, regenerating both
// projections.
func NewRebuildCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rebuild",
		Short:         "Rebuild the graph and index projections",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebuild(rootOpts, cmd, true, true)
		},
	}
}

func runRebuild(opts *RootOptions, cmd *cobra.Command, withGraph, withIndex bool) error {
	formatter := newFormatter(opts, cmd)

	e, err := loadEnv(opts)
	if err != nil {
		return outputStoreError(formatter, err)
	}
	snap, err := e.store.LoadAll()
	if err != nil {
		return outputStoreError(formatter, err)
	}

	var written []string
	if withGraph {
		g := graph.Build(snap)
		if err := graph.WriteGraph(e.reportsDir, g); err != nil {
			return outputStoreError(formatter, err)
		}
		formatter.VerboseLog("graph: %d nodes, %d edges", g.Metadata.NodeCount, g.Metadata.EdgeCount)
		written = append(written, filepath.Join(e.reportsDir, graph.GraphFilename))
	}
	if withIndex {
		idx := graph.BuildIndex(snap)
		if err := graph.WriteIndex(e.reportsDir, idx); err != nil {
			return outputStoreError(formatter, err)
		}
		formatter.VerboseLog("index: %d records", idx.Metadata.RecordCount)
		written = append(written, filepath.Join(e.reportsDir, graph.IndexFilename))
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"written": written})
	}
	for _, path := range written {
		fmt.Fprintf(formatter.Writer, "✓ wrote %s\n", path)
	}
	return nil
}
