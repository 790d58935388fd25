package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/relc/internal/schema"
)

// ValidateResult is the JSON payload of a successful validation.
type ValidateResult struct {
	SpecFile  string `json:"spec_file"`
	Relations int    `json:"relations"`
	Attrs     int    `json:"attributes"`
	Grouped   bool   `json:"grouped"`
}

// NewValidateCommand creates the validate command: parse and schema-check a
// spec without building or emitting anything.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "validate <spec-file>",
		Short:         "Parse and schema-check a specification",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateCmd(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidateCmd(opts *RootOptions, specFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	parsed, err := LoadSpec(specFile)
	if err != nil {
		return fail(formatter, err)
	}
	if _, err := schema.Check(parsed); err != nil {
		return fail(formatter, err)
	}

	result := ValidateResult{
		SpecFile:  specFile,
		Relations: len(parsed.From),
		Attrs:     len(parsed.Schema),
		Grouped:   len(parsed.GroupBy) > 0,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s is valid: %d attribute(s), %d relation(s)\n",
		specFile, result.Attrs, result.Relations)
	return nil
}
