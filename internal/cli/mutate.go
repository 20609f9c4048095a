package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/reqstore/internal/graph"
	"github.com/roach88/reqstore/internal/journal"
	"github.com/roach88/reqstore/internal/mutate"
	"github.com/roach88/reqstore/internal/record"
	"github.com/roach88/reqstore/internal/validate"
)

// NewMutateCommand creates the mutate command.
func NewMutateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		payloadJSON string
		payloadFile string
	)

	cmd := &cobra.Command{
		Use:   "mutate <operation>",
		Short: "Apply a named mutation to the store",
		Long: `Apply one operation from the fixed operation set. The full store is
loaded, the mutation applied to a clone, and the result validated; any
blocking violation rejects the mutation and leaves the store unchanged.
On success the journal records the operation and the graph and index
projections are rebuilt.

Run "reqstore ops" for the operation list.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutate(rootOpts, args[0], payloadJSON, payloadFile, cmd)
		},
	}

	cmd.Flags().StringVar(&payloadJSON, "payload", "", "operation payload as inline JSON")
	cmd.Flags().StringVar(&payloadFile, "payload-file", "", "operation payload from a JSON file (- for stdin)")

	return cmd
}

func runMutate(opts *RootOptions, op, payloadJSON, payloadFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	raw, err := readPayload(payloadJSON, payloadFile, cmd)
	if err != nil {
		_ = formatter.Error(string(record.CodeSchema), err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	e, err := loadEnv(opts)
	if err != nil {
		return outputStoreError(formatter, err)
	}

	engine := mutate.New(e.store)
	res, err := engine.Apply(op, raw)
	if err != nil {
		return outputMutateError(formatter, err)
	}

	formatter.VerboseLog("Applied %s as %s", op, res.OpID)

	// Journal and projection rebuilds happen after the store is durable.
	// A failure here is reported but the mutation itself stands.
	if err := journalEntry(e, res, raw); err != nil {
		formatter.VerboseLog("journal: %v", err)
	}
	if err := rebuildProjections(e); err != nil {
		return outputStoreError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(res)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s\n", res.Message)
	for _, w := range res.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning %s\n", w)
	}
	return nil
}

func readPayload(payloadJSON, payloadFile string, cmd *cobra.Command) ([]byte, error) {
	switch {
	case payloadJSON != "" && payloadFile != "":
		return nil, errors.New("--payload and --payload-file are mutually exclusive")
	case payloadJSON != "":
		return []byte(payloadJSON), nil
	case payloadFile == "-":
		return io.ReadAll(cmd.InOrStdin())
	case payloadFile != "":
		return os.ReadFile(payloadFile)
	}
	return []byte("{}"), nil
}

func journalEntry(e *env, res *mutate.Result, raw []byte) error {
	j, err := journal.Open(e.journalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	payload := strings.TrimSpace(string(raw))
	if payload == "" {
		payload = "{}"
	}
	return j.Append(context.Background(), journal.Entry{
		OpID:      res.OpID,
		Op:        res.Op,
		Payload:   payload,
		Message:   res.Message,
		AppliedAt: record.Timestamp(time.Now()),
	})
}

func rebuildProjections(e *env) error {
	snap, err := e.store.LoadAll()
	if err != nil {
		return err
	}
	if err := graph.WriteGraph(e.reportsDir, graph.Build(snap)); err != nil {
		return err
	}
	return graph.WriteIndex(e.reportsDir, graph.BuildIndex(snap))
}

func outputMutateError(formatter *OutputFormatter, err error) error {
	var rejected *validate.RejectedError
	if errors.As(err, &rejected) {
		_ = formatter.Error(string(record.CodeValidationRejected), "mutation rejected", rejected.Violations)
		return &ExitError{Code: ExitFailure, Message: err.Error(), Err: err}
	}

	code := record.CodeOf(err)
	if code == "" {
		code = record.CodeIO
	}
	_ = formatter.Error(string(code), err.Error(), nil)
	return &ExitError{Code: exitCodeFor(code), Message: err.Error(), Err: err}
}
