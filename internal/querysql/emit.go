// Package querysql renders a query expression tree into parameterized SQL
// for SQLite.
//
// Rendering is a structural traversal of the plan: Scan → table reference,
// Join → NATURAL JOIN chain, Filter → WHERE clause, Group → GROUP BY clause
// with its aggregate expressions, Project → column list.
//
// CRITICAL: every literal is bound as a ? parameter and NEVER interpolated
// into the query text.
// CRITICAL: every query carries an ORDER BY over every projected column so
// result order is deterministic.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/relc/internal/ir"
	"github.com/roach88/relc/internal/queryir"
)

// Query is the emitted artifact core: parameterized SQL plus its bound
// parameters in placeholder order, and the stable output column names.
type Query struct {
	SQL     string   `json:"sql"`
	Params  []any    `json:"params"`
	Columns []string `json:"columns"`
}

// EmitError reports a plan construct with no mapping in the target query
// language.
type EmitError struct {
	Construct string `json:"construct"`
	Message   string `json:"message"`
}

// Error implements the error interface.
func (e *EmitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Construct, e.Message)
}

func emitErrorf(construct, format string, args ...any) *EmitError {
	return &EmitError{Construct: construct, Message: fmt.Sprintf(format, args...)}
}

// Emit renders a plan to SQL. Emission is deterministic: the same plan
// always yields the same SQL text and the same parameter order.
func Emit(plan *queryir.Project) (Query, error) {
	if plan == nil {
		return Query{}, emitErrorf("plan", "cannot emit nil plan")
	}
	e := &emitter{}

	selectList, columns, err := e.renderColumns(plan.Columns)
	if err != nil {
		return Query{}, err
	}

	input := plan.Input
	var groupBy string
	if group, ok := input.(queryir.Group); ok {
		groupBy, err = e.renderGroupBy(group)
		if err != nil {
			return Query{}, err
		}
		input = group.Input
	}

	var where string
	if filter, ok := input.(queryir.Filter); ok {
		pred, err := e.renderPredicate(filter.Pred, precNone)
		if err != nil {
			return Query{}, err
		}
		where = " WHERE " + pred
		input = filter.Input
	}

	from, err := e.renderSource(input)
	if err != nil {
		return Query{}, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s%s%s",
		selectList, from, where, groupBy, orderBy(plan.Columns))

	return Query{SQL: sql, Params: e.params, Columns: columns}, nil
}

type emitter struct {
	params []any
}

func (e *emitter) renderColumns(cols []queryir.ProjectedColumn) (string, []string, error) {
	parts := make([]string, len(cols))
	names := make([]string, len(cols))
	for i, col := range cols {
		switch col.Kind {
		case queryir.OutputColumn:
			parts[i] = renderRef(col.Col)
		case queryir.OutputAggregate:
			rendered, err := renderAggregate(col.Agg)
			if err != nil {
				return "", nil, err
			}
			parts[i] = rendered
		default:
			return "", nil, emitErrorf("projection", "unknown column kind %d", col.Kind)
		}
		names[i] = col.Name()
	}
	return strings.Join(parts, ", "), names, nil
}

func renderAggregate(agg queryir.Aggregate) (string, error) {
	switch agg.Func {
	case ir.AggSum, ir.AggCount, ir.AggAvg, ir.AggMin, ir.AggMax:
	default:
		return "", emitErrorf("aggregate", "no SQL mapping for aggregate %q", agg.Func)
	}
	target := renderRef(agg.Col)
	if agg.Col.Name == "*" {
		target = "*"
	}
	return fmt.Sprintf("%s(%s) AS %s", agg.Func, target, agg.Alias), nil
}

func (e *emitter) renderGroupBy(group queryir.Group) (string, error) {
	if len(group.Keys) == 0 {
		return "", emitErrorf("group", "Group node with no keys")
	}
	parts := make([]string, len(group.Keys))
	for i, key := range group.Keys {
		parts[i] = renderRef(key)
	}
	return " GROUP BY " + strings.Join(parts, ", "), nil
}

// renderSource renders the scan/join region of the plan. Natural joins are
// left-deep, so the chain reads in F's declared order.
func (e *emitter) renderSource(p queryir.Plan) (string, error) {
	switch node := p.(type) {
	case queryir.Scan:
		if node.Alias != "" && node.Alias != node.Relation {
			return node.Relation + " AS " + node.Alias, nil
		}
		return node.Relation, nil
	case queryir.Join:
		left, err := e.renderSource(node.Left)
		if err != nil {
			return "", err
		}
		right, err := e.renderSource(node.Right)
		if err != nil {
			return "", err
		}
		return left + " NATURAL JOIN " + right, nil
	default:
		return "", emitErrorf("source", "unexpected %T in the scan region", p)
	}
}

// Predicate precedence levels for minimal parenthesization. A child is
// wrapped exactly when it binds looser than its parent.
const (
	precNone = iota
	precOr
	precAnd
	precNot
)

func (e *emitter) renderPredicate(p ir.Predicate, parent int) (string, error) {
	switch node := p.(type) {
	case nil:
		return "1 = 1", nil

	case ir.Compare:
		return e.renderCompare(node)

	case ir.And:
		if len(node.Terms) == 0 {
			return "1 = 1", nil
		}
		rendered, err := e.renderTerms(node.Terms, " AND ", precAnd)
		if err != nil {
			return "", err
		}
		return wrapIf(parent > precAnd, rendered), nil

	case ir.Or:
		if len(node.Terms) == 0 {
			return "", emitErrorf("predicate", "Or node with no terms")
		}
		rendered, err := e.renderTerms(node.Terms, " OR ", precOr)
		if err != nil {
			return "", err
		}
		return wrapIf(parent > precOr, rendered), nil

	case ir.Not:
		inner, err := e.renderPredicate(node.Term, precNot)
		if err != nil {
			return "", err
		}
		return "NOT " + inner, nil

	default:
		return "", emitErrorf("predicate", "no SQL mapping for predicate node %T", p)
	}
}

func (e *emitter) renderTerms(terms []ir.Predicate, sep string, prec int) (string, error) {
	parts := make([]string, len(terms))
	for i, t := range terms {
		rendered, err := e.renderPredicate(t, prec)
		if err != nil {
			return "", err
		}
		parts[i] = rendered
	}
	return strings.Join(parts, sep), nil
}

func (e *emitter) renderCompare(cmp ir.Compare) (string, error) {
	left, err := e.renderOperand(cmp.Left)
	if err != nil {
		return "", err
	}
	right, err := e.renderOperand(cmp.Right)
	if err != nil {
		return "", err
	}
	switch cmp.Op {
	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
	default:
		return "", emitErrorf("comparison", "no SQL mapping for operator %q", cmp.Op)
	}
	return left + " " + string(cmp.Op) + " " + right, nil
}

// renderOperand renders a column reference, or binds a literal and renders
// its placeholder. Literal values never reach the query text.
func (e *emitter) renderOperand(o ir.Operand) (string, error) {
	switch op := o.(type) {
	case ir.Column:
		return renderRef(op.Ref), nil
	case ir.Literal:
		param, err := ir.Param(op.Value)
		if err != nil {
			return "", emitErrorf("literal", "%v", err)
		}
		e.params = append(e.params, param)
		return "?", nil
	default:
		return "", emitErrorf("operand", "no SQL mapping for operand %T", o)
	}
}

func renderRef(ref ir.ColumnRef) string {
	if ref.Qualifier != "" {
		return ref.Qualifier + "." + ref.Name
	}
	return ref.Name
}

// orderBy builds the mandatory deterministic ordering over every projected
// column, left to right. COLLATE BINARY pins text ordering even when a
// column was declared with a different collation; it is a no-op on numeric
// values.
func orderBy(cols []queryir.ProjectedColumn) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		key := col.Agg.Alias
		if col.Kind == queryir.OutputColumn {
			key = renderRef(col.Col)
		}
		parts[i] = key + " COLLATE BINARY"
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func wrapIf(cond bool, s string) string {
	if cond {
		return "(" + s + ")"
	}
	return s
}
