package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/relc/internal/queryir"
)

// ExplainResult is the JSON payload of the explain command.
type ExplainResult struct {
	SpecFile string `json:"spec_file"`
	Plan     string `json:"plan"`
	SQL      string `json:"sql"`
	Params   []any  `json:"params"`
}

// NewExplainCommand creates the explain command: compile a spec and show
// the plan tree and the SQL it emits, without writing any artifact.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "explain <spec-file>",
		Short:         "Show the query plan and SQL for a specification",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplainCmd(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runExplainCmd(opts *RootOptions, specFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	compiled, err := CompileFile(specFile)
	if err != nil {
		return fail(formatter, err)
	}

	result := ExplainResult{
		SpecFile: specFile,
		Plan:     queryir.Format(compiled.Plan),
		SQL:      compiled.Query.SQL,
		Params:   compiled.Query.Params,
	}
	if result.Params == nil {
		result.Params = []any{}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprint(formatter.Writer, result.Plan)
	fmt.Fprintf(formatter.Writer, "\nsql: %s\n", result.SQL)
	for i, p := range result.Params {
		fmt.Fprintf(formatter.Writer, "param %d: %v\n", i+1, p)
	}
	return nil
}
