// Package cuespec is the CUE front end: it compiles a CUE-encoded query
// specification into the same ir.QuerySpec the text and YAML front ends
// produce.
//
// The CUE surface mirrors the structured field form:
//
//	query: {
//		schema:   ["id:int", "name:text", "amount:float"]
//		arity:    3
//		output:   ["name", "amount"]
//		from:     ["s=sales"]
//		sigma:    "amount > 100"
//		group_by: ["name"]
//	}
//
// output, sigma, and group_by are optional; absent means empty. Entry syntax
// inside the lists is identical to the text format, and sigma is parsed with
// the shared expression parser.
package cuespec

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/relc/internal/ir"
	"github.com/roach88/relc/internal/spec"
)

// CompileError reports a malformed CUE specification, with the CUE source
// position when one is available.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads and compiles a CUE specification file.
func Load(path string) (*ir.QuerySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	queryVal := v.LookupPath(cue.ParsePath("query"))
	if !queryVal.Exists() {
		return nil, &CompileError{
			Field:   "query",
			Message: "top-level query struct is required",
			Pos:     v.Pos(),
		}
	}
	return CompileSpec(queryVal)
}

// CompileSpec parses a CUE value into a QuerySpec. The value should be the
// query struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`query: { ... }`)
//	spec, err := CompileSpec(v.LookupPath(cue.ParsePath("query")))
func CompileSpec(v cue.Value) (*ir.QuerySpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	fields := spec.Fields{}
	var err error

	if fields.Schema, err = stringList(v, "schema", true); err != nil {
		return nil, err
	}
	if fields.Arity, err = intField(v, "arity"); err != nil {
		return nil, err
	}
	if fields.Output, err = stringList(v, "output", false); err != nil {
		return nil, err
	}
	if fields.From, err = stringList(v, "from", true); err != nil {
		return nil, err
	}
	if fields.Sigma, err = stringField(v, "sigma"); err != nil {
		return nil, err
	}
	if fields.GroupBy, err = stringList(v, "group_by", false); err != nil {
		return nil, err
	}

	return fields.Build()
}

// stringList extracts a list-of-strings field.
func stringList(v cue.Value, field string, required bool) ([]string, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		if required {
			return nil, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
		}
		return nil, nil
	}

	iter, err := val.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var entries []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("entries must be strings: %v", err),
				Pos:     iter.Value().Pos(),
			}
		}
		entries = append(entries, s)
	}
	if required && len(entries) == 0 {
		return nil, &CompileError{Field: field, Message: field + " must not be empty", Pos: val.Pos()}
	}
	return entries, nil
}

// intField extracts a required integer field.
func intField(v cue.Value, field string) (int, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		return 0, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	n, err := val.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// stringField extracts an optional string field.
func stringField(v cue.Value, field string) (string, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		return "", nil
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// formatCUEError converts a CUE SDK error into a CompileError carrying the
// first reported position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
