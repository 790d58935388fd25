package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/relc/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	DB string // SQLite database path
}

// NewRunCommand creates the run command: compile a spec and execute it
// directly against a SQLite database, without going through a generated
// artifact. Rows stream to stdout as tab-separated text regardless of
// --format; diagnostics respect the format flag.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "run <spec-file> --db <database>",
		Short:         "Compile and execute a specification against a SQLite database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunCmd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to the SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRunCmd(opts *RunOptions, specFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	compiled, err := CompileFile(specFile)
	if err != nil {
		return fail(formatter, err)
	}
	formatter.VerboseLog("sql: %s", compiled.Query.SQL)
	formatter.VerboseLog("params: %v", compiled.Query.Params)

	st, err := store.Open(opts.DB)
	if err != nil {
		_ = formatter.Error("", err.Error(), nil)
		return WrapExitError(ExitFailure, err.Error(), nil)
	}
	defer st.Close()

	rows, err := st.Query(cmd.Context(), compiled.Query.SQL, compiled.Query.Params...)
	if err != nil {
		_ = formatter.Error("", err.Error(), nil)
		return WrapExitError(ExitFailure, err.Error(), nil)
	}
	defer rows.Close()

	count, err := store.StreamTSV(cmd.OutOrStdout(), rows)
	if err != nil {
		_ = formatter.Error("", err.Error(), nil)
		return WrapExitError(ExitFailure, err.Error(), nil)
	}
	formatter.VerboseLog("%d row(s)", count)
	return nil
}
