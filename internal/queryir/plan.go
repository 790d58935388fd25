package queryir

import "github.com/roach88/relc/internal/ir"

// Plan represents a node of the query expression tree.
//
// This is a sealed interface - only types in this package implement it. The
// marker method pattern prevents external implementations and enables
// exhaustive type switches in backend emitters.
type Plan interface {
	planNode() // Marker method - seals interface to this package
}

// Scan reads one base relation under an alias.
type Scan struct {
	Relation string
	Alias    string
}

func (Scan) planNode() {}

// Join combines two inputs with a natural join (equality on every shared
// column name, resolved by the store). Inputs are Scans or other Joins;
// Filter/Group/Project never appear below a Join.
type Join struct {
	Left  Plan
	Right Plan
}

func (Join) planNode() {}

// Filter keeps the input rows satisfying Pred. Pred is never nil: a trivial
// sigma produces no Filter node at all.
type Filter struct {
	Input Plan
	Pred  ir.Predicate
}

func (Filter) planNode() {}

// Aggregate is one aggregated output of a Group node.
type Aggregate struct {
	Func ir.AggFunc
	Col  ir.ColumnRef // Name "*" only for count
	// Alias is the stable output name, e.g. "sum_amount".
	Alias string
}

// Group partitions the input by Keys and computes Aggregates per partition.
// Keys keep the order G declared. Only present when G is non-empty.
type Group struct {
	Input      Plan
	Keys       []ir.ColumnRef
	Aggregates []Aggregate
}

func (Group) planNode() {}

// OutputKind discriminates the two projection column kinds.
type OutputKind int

const (
	// OutputColumn projects a plain attribute.
	OutputColumn OutputKind = iota
	// OutputAggregate projects an aggregate computed by the Group node
	// below, identified by its alias.
	OutputAggregate
)

// ProjectedColumn is one column of the top-level projection.
type ProjectedColumn struct {
	Kind OutputKind
	Col  ir.ColumnRef // set for OutputColumn
	Agg  Aggregate    // set for OutputAggregate
}

// Name returns the stable output column name.
func (p ProjectedColumn) Name() string {
	if p.Kind == OutputAggregate {
		return p.Agg.Alias
	}
	return p.Col.Name
}

// Project is the mandatory top-level node selecting the output columns, in
// order.
type Project struct {
	Input   Plan
	Columns []ProjectedColumn
}

func (Project) planNode() {}
