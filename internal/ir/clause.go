package ir

import "strings"

// Predicate is a sealed interface over the selection-predicate node kinds.
// Only Compare, And, Or, and Not implement it, so backend traversals can use
// exhaustive type switches.
//
// A nil Predicate means "always true" (empty sigma).
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// CompareOp is a comparison operator in a Compare node.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "!="
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// Compare is a single comparison: <left> <op> <right>.
type Compare struct {
	Left  Operand
	Op    CompareOp
	Right Operand
}

func (Compare) predicateNode() {}

// And is a conjunction. Empty Terms means vacuous truth.
type And struct {
	Terms []Predicate
}

func (And) predicateNode() {}

// Or is a disjunction. Empty Terms means vacuous falsehood and is rejected
// by the front ends.
type Or struct {
	Terms []Predicate
}

func (Or) predicateNode() {}

// Not negates its operand.
type Not struct {
	Term Predicate
}

func (Not) predicateNode() {}

// Operand is a sealed interface over comparison operands: either a column
// reference or a literal value.
type Operand interface {
	operandNode() // Marker method - seals interface to this package
}

// Column is an attribute-reference operand.
type Column struct {
	Ref ColumnRef
}

func (Column) operandNode() {}

// Literal is a constant operand. Literals are always bound as parameters by
// the emitter, never rendered into query text.
type Literal struct {
	Value Value
}

func (Literal) operandNode() {}

// Columns returns every column reference in the predicate tree, in
// left-to-right traversal order. Used by the schema validator to resolve
// each reference against S.
func Columns(p Predicate) []ColumnRef {
	var refs []ColumnRef
	walkPredicate(p, func(c ColumnRef) {
		refs = append(refs, c)
	})
	return refs
}

func walkPredicate(p Predicate, visit func(ColumnRef)) {
	switch node := p.(type) {
	case nil:
	case Compare:
		walkOperand(node.Left, visit)
		walkOperand(node.Right, visit)
	case And:
		for _, t := range node.Terms {
			walkPredicate(t, visit)
		}
	case Or:
		for _, t := range node.Terms {
			walkPredicate(t, visit)
		}
	case Not:
		walkPredicate(node.Term, visit)
	}
}

func walkOperand(o Operand, visit func(ColumnRef)) {
	if col, ok := o.(Column); ok {
		visit(col.Ref)
	}
}

// FormatPredicate renders a predicate for diagnostics and the explain
// output. Literals appear verbatim here; this form is never sent to a
// database.
func FormatPredicate(p Predicate) string {
	switch node := p.(type) {
	case nil:
		return "true"
	case Compare:
		return formatOperand(node.Left) + " " + string(node.Op) + " " + formatOperand(node.Right)
	case And:
		return formatTerms(node.Terms, " AND ")
	case Or:
		return formatTerms(node.Terms, " OR ")
	case Not:
		return "NOT (" + FormatPredicate(node.Term) + ")"
	default:
		return "?"
	}
}

func formatTerms(terms []Predicate, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = "(" + FormatPredicate(t) + ")"
	}
	return strings.Join(parts, sep)
}

func formatOperand(o Operand) string {
	switch op := o.(type) {
	case Column:
		return op.Ref.String()
	case Literal:
		if s, ok := op.Value.(String); ok {
			return "'" + string(s) + "'"
		}
		return Render(op.Value)
	default:
		return "?"
	}
}
