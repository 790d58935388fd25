package spec

import (
	"strings"

	"github.com/roach88/relc/internal/ir"
)

// Fields is the six-field surface shared by the structured front ends
// (YAML, CUE). Entry syntax inside the lists is identical to the text
// format, so every front end funnels through the same entry parsers and
// produces identical QuerySpecs.
type Fields struct {
	Schema  []string
	Arity   int
	Output  []string
	From    []string
	Sigma   string
	GroupBy []string
}

// Build assembles a QuerySpec from structured fields. Line numbers are not
// meaningful here, so parse errors carry only section and message.
func (f Fields) Build() (*ir.QuerySpec, error) {
	spec := &ir.QuerySpec{Arity: f.Arity}
	var err *ParseError

	if spec.Schema, err = parseSchema(joinSection(keySchema, f.Schema)); err != nil {
		return nil, err
	}
	if spec.Output, err = parseOutput(joinSection(keyOutput, f.Output), spec.Schema); err != nil {
		return nil, err
	}
	if spec.From, err = parseRange(joinSection(keyRange, f.From)); err != nil {
		return nil, err
	}
	if spec.GroupBy, err = parseGrouping(joinSection(keyGrouping, f.GroupBy)); err != nil {
		return nil, err
	}

	pred, predErr := ParsePredicate(f.Sigma)
	if predErr != nil {
		return nil, parseErrorf(ErrBadPredicate, string(keyPredicate), 0, "%v", predErr)
	}
	spec.Where = pred

	return spec, nil
}

// joinSection rebuilds a raw section from structured list entries so the
// text entry parsers can be reused as-is.
func joinSection(key sectionKey, entries []string) section {
	return section{Key: key, Value: strings.Join(entries, ", ")}
}
