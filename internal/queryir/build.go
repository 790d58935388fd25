package queryir

import (
	"fmt"

	"github.com/roach88/relc/internal/ir"
)

// BuildError reports a spec that cannot be turned into a plan: a join or
// grouping construction ambiguity the validator has no business ruling on.
type BuildError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func buildErrorf(field, format string, args ...any) *BuildError {
	return &BuildError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Build constructs the query expression tree for a validated spec. The
// construction is deterministic; see the package documentation for the
// join, default-projection, and default-aggregate policies.
func Build(spec *ir.QuerySpec) (*Project, error) {
	if len(spec.From) == 0 {
		return nil, buildErrorf("F", "no relation to scan")
	}
	if err := checkRelations(spec.From); err != nil {
		return nil, err
	}

	// Scans in declared order, combined left-deep.
	var root Plan = Scan{Relation: spec.From[0].Relation, Alias: spec.From[0].Alias}
	for _, rel := range spec.From[1:] {
		root = Join{Left: root, Right: Scan{Relation: rel.Relation, Alias: rel.Alias}}
	}

	if spec.Where != nil {
		root = Filter{Input: root, Pred: spec.Where}
	}

	output := effectiveOutput(spec)

	if len(spec.GroupBy) == 0 {
		for _, out := range output {
			if out.Agg != ir.AggNone {
				return nil, buildErrorf("V", "aggregate %s requires a non-empty G", out)
			}
		}
		return &Project{Input: root, Columns: plainColumns(output)}, nil
	}

	group := Group{Input: root, Keys: spec.GroupBy}
	columns := make([]ProjectedColumn, 0, len(output))
	for _, out := range output {
		if col, ok := groupKeyColumn(out, spec.GroupBy); ok {
			columns = append(columns, col)
			continue
		}
		agg, err := aggregateFor(out, spec)
		if err != nil {
			return nil, err
		}
		group.Aggregates = append(group.Aggregates, agg)
		columns = append(columns, ProjectedColumn{Kind: OutputAggregate, Agg: agg})
	}

	return &Project{Input: group, Columns: columns}, nil
}

// checkRelations rejects the same relation scanned twice under one alias:
// a natural self-join is always ambiguous without distinct aliases.
func checkRelations(from []ir.RelationRef) error {
	seen := make(map[string]string, len(from))
	for _, rel := range from {
		if alias, dup := seen[rel.Relation]; dup && alias == rel.Alias {
			return buildErrorf("F", "relation %q scanned twice under alias %q", rel.Relation, rel.Alias)
		}
		seen[rel.Relation] = rel.Alias
	}
	return nil
}

// effectiveOutput applies the empty-V default: project all of S in schema
// order.
func effectiveOutput(spec *ir.QuerySpec) []ir.OutputColumn {
	if len(spec.Output) > 0 {
		return spec.Output
	}
	out := make([]ir.OutputColumn, len(spec.Schema))
	for i, a := range spec.Schema {
		out[i] = ir.OutputColumn{Col: ir.ColumnRef{Name: a.Name}}
	}
	return out
}

func plainColumns(output []ir.OutputColumn) []ProjectedColumn {
	columns := make([]ProjectedColumn, len(output))
	for i, out := range output {
		columns[i] = ProjectedColumn{Kind: OutputColumn, Col: out.Col}
	}
	return columns
}

// groupKeyColumn returns the projection for an output that is itself a
// grouping key (projected as-is, no aggregate).
func groupKeyColumn(out ir.OutputColumn, keys []ir.ColumnRef) (ProjectedColumn, bool) {
	if out.Agg != ir.AggNone {
		return ProjectedColumn{}, false
	}
	for _, key := range keys {
		if key.Name == out.Col.Name {
			return ProjectedColumn{Kind: OutputColumn, Col: out.Col}, true
		}
	}
	return ProjectedColumn{}, false
}

// aggregateFor picks the aggregate for a non-key output: the explicit token
// if V gave one, otherwise the documented default (sum for numeric
// attributes, min for the rest).
func aggregateFor(out ir.OutputColumn, spec *ir.QuerySpec) (Aggregate, error) {
	fn := out.Agg
	if fn == ir.AggNone {
		attr, ok := spec.Attribute(out.Col.Name)
		if !ok {
			return Aggregate{}, buildErrorf("V", "cannot pick a default aggregate for unknown attribute %q", out.Col.Name)
		}
		if attr.Type.Numeric() {
			fn = ir.AggSum
		} else {
			fn = ir.AggMin
		}
	}

	alias := string(fn) + "_" + out.Col.Name
	if out.Col.Name == "*" {
		alias = string(fn) + "_all"
	}
	return Aggregate{Func: fn, Col: out.Col, Alias: alias}, nil
}
