// Package schema checks a parsed QuerySpec for semantic consistency between
// its six fields. Validation is pure: the spec is returned unchanged on
// success and never mutated.
//
// The validator always checks every field and reports every violation it
// finds in one SchemaError. It never fails fast: the front ends guarantee
// structural shape (sections present, arity an integer), so no violation can
// block a later check.
package schema

import (
	"fmt"
	"strings"

	"github.com/roach88/relc/internal/ir"
)

// Validation error codes (E200-E219).
const (
	ErrArityMismatch    = "E201" // n != len(S)
	ErrDuplicateAttr    = "E202" // attribute declared twice in S
	ErrUnknownOutput    = "E203" // V references an attribute not in S
	ErrDuplicateOutput  = "E204" // V lists the same output twice
	ErrBadAggregateType = "E205" // sum/avg over a non-numeric attribute
	ErrUnknownPredAttr  = "E206" // sigma references an attribute not in S
	ErrUnknownGroupKey  = "E207" // G references an attribute not in S
	ErrUnusedAlias      = "E208" // alias in F never referenced (multi-relation)
	ErrAmbiguousRef     = "E209" // unqualified reference with multiple relations
	ErrUnknownAlias     = "E210" // qualifier is not an alias declared in F
)

// ValidationError is one semantic inconsistency found in a QuerySpec.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field"` // S, n, V, F, sigma, or G
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// SchemaError aggregates every violation found in one spec.
type SchemaError struct {
	Violations []ValidationError
}

// Error lists all violations, one per line after the summary.
func (e *SchemaError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d schema violation(s)", len(e.Violations))
	for _, v := range e.Violations {
		sb.WriteString("\n  ")
		sb.WriteString(v.Error())
	}
	return sb.String()
}

// Check validates a spec and wraps any violations in a single *SchemaError.
// On success the spec is returned unchanged.
func Check(spec *ir.QuerySpec) (*ir.QuerySpec, error) {
	if errs := Validate(spec); len(errs) > 0 {
		return nil, &SchemaError{Violations: errs}
	}
	return spec, nil
}

// Validate returns all violations found in the spec (never fails fast).
func Validate(spec *ir.QuerySpec) []ValidationError {
	v := &validator{spec: spec, usedAliases: make(map[string]bool)}

	v.checkArity()
	v.checkSchema()
	v.checkOutput()
	v.checkPredicate()
	v.checkGrouping()
	v.checkAliases() // after the reference checks, which record alias usage

	return v.errs
}

type validator struct {
	spec        *ir.QuerySpec
	errs        []ValidationError
	usedAliases map[string]bool
}

func (v *validator) addError(code, field, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) checkArity() {
	if v.spec.Arity != len(v.spec.Schema) {
		v.addError(ErrArityMismatch, "n",
			"declared arity %d does not match schema length %d", v.spec.Arity, len(v.spec.Schema))
	}
}

func (v *validator) checkSchema() {
	seen := make(map[string]bool, len(v.spec.Schema))
	for _, a := range v.spec.Schema {
		if seen[a.Name] {
			v.addError(ErrDuplicateAttr, "S", "attribute %q declared more than once", a.Name)
		}
		seen[a.Name] = true
	}
}

func (v *validator) checkOutput() {
	seen := make(map[string]bool, len(v.spec.Output))
	for _, out := range v.spec.Output {
		key := v.outputKey(out)
		if seen[key] {
			v.addError(ErrDuplicateOutput, "V", "duplicate output %q", out)
		}
		seen[key] = true

		if out.Agg == ir.AggCount && out.Col.Name == "*" {
			continue // count_* references the whole row, nothing to resolve
		}

		attr, ok := v.resolve(out.Col, "V", ErrUnknownOutput)
		if !ok {
			continue
		}
		if (out.Agg == ir.AggSum || out.Agg == ir.AggAvg) && !attr.Type.Numeric() {
			v.addError(ErrBadAggregateType, "V",
				"aggregate %s over non-numeric attribute %q (type %s)", out.Agg, out.Col.Name, attr.Type)
		}
	}
}

// outputKey is the duplicate-detection key for an output entry. With a
// single relation a qualified and an unqualified spelling of the same
// attribute resolve identically, so the qualifier is dropped before
// comparing.
func (v *validator) outputKey(out ir.OutputColumn) string {
	if len(v.spec.From) == 1 && out.Col.Qualifier == v.spec.From[0].Alias {
		out.Col.Qualifier = ""
	}
	return out.String()
}

func (v *validator) checkPredicate() {
	for _, ref := range ir.Columns(v.spec.Where) {
		v.resolve(ref, "sigma", ErrUnknownPredAttr)
	}
}

func (v *validator) checkGrouping() {
	for _, key := range v.spec.GroupBy {
		v.resolve(key, "G", ErrUnknownGroupKey)
	}
}

// resolve checks a column reference against S and F, records alias usage,
// and reports the violation under the given field/code when unresolvable.
func (v *validator) resolve(ref ir.ColumnRef, field, notInSchemaCode string) (ir.Attribute, bool) {
	multi := len(v.spec.From) > 1

	if ref.Qualifier != "" {
		if _, ok := v.spec.RelationFor(ref.Qualifier); !ok {
			v.addError(ErrUnknownAlias, field,
				"reference %q uses alias %q not declared in F", ref, ref.Qualifier)
			return ir.Attribute{}, false
		}
		v.usedAliases[ref.Qualifier] = true
	} else if multi {
		v.addError(ErrAmbiguousRef, field,
			"reference %q has no alias but F declares %d relations", ref, len(v.spec.From))
		return ir.Attribute{}, false
	} else if len(v.spec.From) == 1 {
		// Single relation: unqualified references bind to it implicitly.
		v.usedAliases[v.spec.From[0].Alias] = true
	}

	attr, ok := v.spec.Attribute(ref.Name)
	if !ok {
		v.addError(notInSchemaCode, field, "attribute %q is not declared in S", ref.Name)
		return ir.Attribute{}, false
	}
	return attr, true
}

// checkAliases flags range-clause aliases no reference ever used. The check
// only applies when F declares multiple relations: with a single relation
// every unqualified reference binds to it.
func (v *validator) checkAliases() {
	if len(v.spec.From) < 2 {
		return
	}
	for _, rel := range v.spec.From {
		if !v.usedAliases[rel.Alias] {
			v.addError(ErrUnusedAlias, "F",
				"alias %q (relation %q) is never referenced", rel.Alias, rel.Relation)
		}
	}
}
