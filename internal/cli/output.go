package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/relc/internal/cuespec"
	"github.com/roach88/relc/internal/queryir"
	"github.com/roach88/relc/internal/querysql"
	"github.com/roach88/relc/internal/schema"
	"github.com/roach88/relc/internal/spec"
)

// Exit codes for CLI commands. Each compiler stage gets a distinct code so
// callers can tell where a spec failed without parsing the diagnostic.
const (
	ExitSuccess  = 0
	ExitFailure  = 1 // generic failure (I/O, bad flags, execution errors)
	ExitParse    = 2
	ExitValidate = 3
	ExitBuild    = 4
	ExitEmit     = 5
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsExitError reports whether the error came through a command's own
// diagnostic path. Errors cobra raises before a command runs (bad flags,
// wrong arg count) are not ExitErrors and still need printing at the top
// level.
func IsExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}

// Stage names for diagnostics, matching the pipeline order.
const (
	StageParse    = "parse"
	StageValidate = "validate"
	StageBuild    = "build"
	StageEmit     = "emit"
)

// StageOf classifies an error by the compiler stage that produced it and
// returns the stage name with its exit code. Unclassified errors are
// generic failures.
func StageOf(err error) (string, int) {
	var parseErr *spec.ParseError
	var cueErr *cuespec.CompileError
	var schemaErr *schema.SchemaError
	var buildErr *queryir.BuildError
	var emitErr *querysql.EmitError

	switch {
	case errors.As(err, &parseErr), errors.As(err, &cueErr):
		return StageParse, ExitParse
	case errors.As(err, &schemaErr):
		return StageValidate, ExitValidate
	case errors.As(err, &buildErr):
		return StageBuild, ExitBuild
	case errors.As(err, &emitErr):
		return StageEmit, ExitEmit
	}
	return "", ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostic output, kept off stdout in JSON mode
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Stage   string `json:"stage,omitempty"` // parse, validate, build, or emit
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format: a single-line diagnostic
// in text mode, a structured response in JSON mode.
func (f *OutputFormatter) Error(stage, message string, details any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Stage: stage, Message: message, Details: details},
		})
	}

	if stage != "" {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", stage, message)
	} else {
		fmt.Fprintf(f.Writer, "Error: %s\n", message)
	}
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled. Logs go to
// ErrWriter so they never corrupt JSON output on stdout.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// fail prints a stage-classified diagnostic through the formatter and
// returns the matching ExitError. Every command funnels pipeline errors
// through this, so a spec failure always produces exactly one diagnostic
// line and a stage-specific exit code.
func fail(f *OutputFormatter, err error) error {
	stage, code := StageOf(err)

	// Aggregated schema errors keep the per-violation list as details so the
	// single-line summary does not hide anything.
	var details any
	var schemaErr *schema.SchemaError
	if errors.As(err, &schemaErr) {
		details = schemaErr.Violations
	}

	_ = f.Error(stage, firstLine(err.Error()), details)
	return WrapExitError(code, err.Error(), nil)
}

// firstLine collapses a multi-line error (e.g. an aggregated SchemaError)
// into the single-line CLI diagnostic.
func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i] + " ..."
		}
	}
	return s
}
