// Package cli implements the reqstore command line interface. Commands
// never print their own errors; each returns an ExitError and the binary
// maps it to an exit code (0 success, 1 domain failure, 2 command error).
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reqstore/internal/config"
	"github.com/roach88/reqstore/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Root    string // repository root holding reqstore.yaml and the data dir
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the reqstore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "reqstore",
		Short: "Structured requirements repository",
		Long: `reqstore manages a versioned, validated repository of product planning
records: releases, domain entries, requirements, features, epics, and
stories, stored as canonical JSON with derived graph and index projections.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Root, "root", "C", ".", "repository root directory")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewMutateCommand(opts))
	cmd.AddCommand(NewOpsCommand(opts))
	cmd.AddCommand(NewGraphCommand(opts))
	cmd.AddCommand(NewIndexCommand(opts))
	cmd.AddCommand(NewRebuildCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// env is the resolved repository layout a command operates on.
type env struct {
	cfg         config.Config
	store       *store.Store
	reportsDir  string
	journalPath string
}

// loadEnv reads the repository config and opens the canonical store.
func loadEnv(opts *RootOptions) (*env, error) {
	cfg, err := config.Load(opts.Root)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:         cfg,
		store:       store.New(cfg.Resolve(opts.Root, cfg.DataDir)),
		reportsDir:  cfg.Resolve(opts.Root, cfg.ReportsDir),
		journalPath: cfg.Resolve(opts.Root, cfg.JournalPath),
	}, nil
}

// newFormatter builds the command's output formatter from the global flags.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
