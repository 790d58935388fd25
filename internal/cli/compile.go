package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/relc/internal/emit"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
	Emit   string // artifact kind: go | sql
}

// CompileResult is the JSON payload of a successful compilation.
type CompileResult struct {
	SpecFile    string `json:"spec_file"`
	OutputFile  string `json:"output_file"`
	Kind        string `json:"kind"`
	BuildID     string `json:"build_id"`
	Fingerprint string `json:"fingerprint"`
	SQL         string `json:"sql"`
	ParamCount  int    `json:"param_count"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <spec-file> [<output-file>]",
		Short: "Compile a specification into an executable query artifact",
		Long: `Compile a query specification into an executable artifact.

The artifact is either a standalone Go runner program (--emit go, the
default) or the parameterized SQL text with a parameter manifest
(--emit sql). When no output file is given, the artifact is written next
to the spec file with the matching extension.

Emission is atomic: a failed compilation never leaves a partial output
file behind.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompileCmd(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Emit, "emit", "go", "artifact kind (go|sql)")

	return cmd
}

func runCompileCmd(opts *CompileOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	specFile := args[0]

	kind, err := emit.ParseKind(opts.Emit)
	if err != nil {
		_ = formatter.Error("", err.Error(), nil)
		return WrapExitError(ExitFailure, err.Error(), nil)
	}

	outFile := opts.Output
	if len(args) == 2 {
		if outFile != "" && outFile != args[1] {
			msg := "output file given both as argument and --output"
			_ = formatter.Error("", msg, nil)
			return WrapExitError(ExitFailure, msg, nil)
		}
		outFile = args[1]
	}
	if outFile == "" {
		outFile = defaultOutputPath(specFile, kind)
	}
	// A spec named q.go would otherwise derive q.go as its default output
	// and the atomic rename would replace the spec with the artifact.
	if filepath.Clean(outFile) == filepath.Clean(specFile) {
		msg := fmt.Sprintf("output path %s would overwrite the spec file", outFile)
		_ = formatter.Error("", msg, nil)
		return WrapExitError(ExitFailure, msg, nil)
	}

	compiled, err := CompileFile(specFile)
	if err != nil {
		return fail(formatter, err)
	}
	formatter.VerboseLog("compiled %s: %d relation(s), %d output column(s)",
		specFile, len(compiled.Spec.From), len(compiled.Query.Columns))

	data, err := emit.Render(kind, compiled.Artifact)
	if err != nil {
		return fail(formatter, err)
	}
	if err := emit.WriteFile(outFile, data); err != nil {
		_ = formatter.Error("", err.Error(), nil)
		return WrapExitError(ExitFailure, err.Error(), nil)
	}

	result := CompileResult{
		SpecFile:    specFile,
		OutputFile:  outFile,
		Kind:        string(kind),
		BuildID:     compiled.Artifact.BuildID,
		Fingerprint: compiled.Artifact.Fingerprint,
		SQL:         compiled.Query.SQL,
		ParamCount:  len(compiled.Query.Params),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %s → %s\n", specFile, outFile)
	fmt.Fprintf(formatter.Writer, "  build-id:    %s\n", result.BuildID)
	fmt.Fprintf(formatter.Writer, "  fingerprint: %s\n", result.Fingerprint)
	if opts.Verbose {
		fmt.Fprintf(formatter.Writer, "  sql: %s\n", result.SQL)
	}
	return nil
}

// defaultOutputPath derives the artifact path from the spec path: the spec
// base name with the artifact kind's extension.
func defaultOutputPath(specFile string, kind emit.Kind) string {
	base := strings.TrimSuffix(specFile, filepath.Ext(specFile))
	return base + "." + string(kind)
}
