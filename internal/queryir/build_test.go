package queryir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relc/internal/ir"
)

func salesSpec() *ir.QuerySpec {
	return &ir.QuerySpec{
		Schema: []ir.Attribute{
			{Name: "id", Type: ir.TypeInt},
			{Name: "name", Type: ir.TypeText},
			{Name: "amount", Type: ir.TypeFloat},
		},
		Arity: 3,
		Output: []ir.OutputColumn{
			{Col: ir.ColumnRef{Name: "name"}},
			{Col: ir.ColumnRef{Name: "amount"}},
		},
		From: []ir.RelationRef{{Alias: "sales", Relation: "sales"}},
		Where: ir.Compare{
			Left:  ir.Column{Ref: ir.ColumnRef{Name: "amount"}},
			Op:    ir.OpGt,
			Right: ir.Literal{Value: ir.Int(100)},
		},
	}
}

func assertPlan(t *testing.T, want, got *Project) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_FilteredProjection(t *testing.T) {
	spec := salesSpec()
	plan, err := Build(spec)
	require.NoError(t, err)

	assertPlan(t, &Project{
		Input: Filter{
			Input: Scan{Relation: "sales", Alias: "sales"},
			Pred:  spec.Where,
		},
		Columns: []ProjectedColumn{
			{Kind: OutputColumn, Col: ir.ColumnRef{Name: "name"}},
			{Kind: OutputColumn, Col: ir.ColumnRef{Name: "amount"}},
		},
	}, plan)

	assert.True(t, Validate(plan).OK)
}

func TestBuild_TrivialPredicateHasNoFilter(t *testing.T) {
	spec := salesSpec()
	spec.Where = nil

	plan, err := Build(spec)
	require.NoError(t, err)
	assert.Equal(t, Scan{Relation: "sales", Alias: "sales"}, plan.Input)
}

func TestBuild_EmptyOutputProjectsWholeSchema(t *testing.T) {
	spec := salesSpec()
	spec.Output = nil
	spec.Where = nil

	plan, err := Build(spec)
	require.NoError(t, err)

	var names []string
	for _, c := range plan.Columns {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"id", "name", "amount"}, names)
}

func TestBuild_LeftDeepJoins(t *testing.T) {
	spec := salesSpec()
	spec.Where = nil
	spec.Output = []ir.OutputColumn{{Col: ir.ColumnRef{Qualifier: "a", Name: "name"}}}
	spec.From = []ir.RelationRef{
		{Alias: "a", Relation: "sales"},
		{Alias: "b", Relation: "regions"},
		{Alias: "c", Relation: "quarters"},
	}

	plan, err := Build(spec)
	require.NoError(t, err)

	// ((a JOIN b) JOIN c), scans in declared order.
	assertPlan(t, &Project{
		Input: Join{
			Left: Join{
				Left:  Scan{Relation: "sales", Alias: "a"},
				Right: Scan{Relation: "regions", Alias: "b"},
			},
			Right: Scan{Relation: "quarters", Alias: "c"},
		},
		Columns: []ProjectedColumn{
			{Kind: OutputColumn, Col: ir.ColumnRef{Qualifier: "a", Name: "name"}},
		},
	}, plan)
}

func TestBuild_SelfJoinNeedsDistinctAliases(t *testing.T) {
	spec := salesSpec()
	spec.From = []ir.RelationRef{
		{Alias: "sales", Relation: "sales"},
		{Alias: "sales", Relation: "sales"},
	}

	_, err := Build(spec)
	var berr *BuildError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "F", berr.Field)
}

func TestBuild_GroupingWithDefaultAggregates(t *testing.T) {
	spec := salesSpec()
	spec.Output = nil
	spec.Where = nil
	spec.GroupBy = []ir.ColumnRef{{Name: "name"}}

	plan, err := Build(spec)
	require.NoError(t, err)

	group, ok := plan.Input.(Group)
	require.True(t, ok, "grouped plan places a Group under Project")
	assert.Equal(t, []ir.ColumnRef{{Name: "name"}}, group.Keys)

	// Non-key outputs get the default aggregate: sum for numeric types,
	// min otherwise.
	assert.Equal(t, []Aggregate{
		{Func: ir.AggSum, Col: ir.ColumnRef{Name: "id"}, Alias: "sum_id"},
		{Func: ir.AggSum, Col: ir.ColumnRef{Name: "amount"}, Alias: "sum_amount"},
	}, group.Aggregates)

	var names []string
	for _, c := range plan.Columns {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"sum_id", "name", "sum_amount"}, names)

	assert.True(t, Validate(plan).OK)
}

func TestBuild_DefaultAggregateForText(t *testing.T) {
	spec := salesSpec()
	spec.Output = []ir.OutputColumn{
		{Col: ir.ColumnRef{Name: "id"}},
		{Col: ir.ColumnRef{Name: "name"}},
	}
	spec.Where = nil
	spec.GroupBy = []ir.ColumnRef{{Name: "id"}}

	plan, err := Build(spec)
	require.NoError(t, err)

	group := plan.Input.(Group)
	assert.Equal(t, []Aggregate{
		{Func: ir.AggMin, Col: ir.ColumnRef{Name: "name"}, Alias: "min_name"},
	}, group.Aggregates)
}

func TestBuild_ExplicitAggregates(t *testing.T) {
	spec := salesSpec()
	spec.Output = []ir.OutputColumn{
		{Col: ir.ColumnRef{Name: "name"}},
		{Agg: ir.AggAvg, Col: ir.ColumnRef{Name: "amount"}},
		{Agg: ir.AggCount, Col: ir.ColumnRef{Name: "*"}},
	}
	spec.Where = nil
	spec.GroupBy = []ir.ColumnRef{{Name: "name"}}

	plan, err := Build(spec)
	require.NoError(t, err)

	group := plan.Input.(Group)
	assert.Equal(t, []Aggregate{
		{Func: ir.AggAvg, Col: ir.ColumnRef{Name: "amount"}, Alias: "avg_amount"},
		{Func: ir.AggCount, Col: ir.ColumnRef{Name: "*"}, Alias: "count_all"},
	}, group.Aggregates)
}

func TestBuild_AggregateWithoutGrouping(t *testing.T) {
	spec := salesSpec()
	spec.Output = []ir.OutputColumn{{Agg: ir.AggSum, Col: ir.ColumnRef{Name: "amount"}}}

	_, err := Build(spec)
	var berr *BuildError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "V", berr.Field)
}

func TestBuild_GroupKeyNotProjected(t *testing.T) {
	// A key may group without being projected; the remaining outputs still
	// aggregate.
	spec := salesSpec()
	spec.Output = []ir.OutputColumn{{Col: ir.ColumnRef{Name: "amount"}}}
	spec.Where = nil
	spec.GroupBy = []ir.ColumnRef{{Name: "name"}}

	plan, err := Build(spec)
	require.NoError(t, err)
	require.Len(t, plan.Columns, 1)
	assert.Equal(t, "sum_amount", plan.Columns[0].Name())
}

func TestValidate_RejectsMalformedTrees(t *testing.T) {
	testCases := []struct {
		name string
		plan *Project
	}{
		{name: "nil plan", plan: nil},
		{
			name: "no columns",
			plan: &Project{Input: Scan{Relation: "t", Alias: "t"}},
		},
		{
			name: "filter with nil predicate",
			plan: &Project{
				Input:   Filter{Input: Scan{Relation: "t", Alias: "t"}},
				Columns: []ProjectedColumn{{Col: ir.ColumnRef{Name: "a"}}},
			},
		},
		{
			name: "group below join",
			plan: &Project{
				Input: Join{
					Left:  Group{Input: Scan{Relation: "t", Alias: "t"}, Keys: []ir.ColumnRef{{Name: "a"}}},
					Right: Scan{Relation: "u", Alias: "u"},
				},
				Columns: []ProjectedColumn{{Col: ir.ColumnRef{Name: "a"}}},
			},
		},
		{
			name: "duplicate scan aliases",
			plan: &Project{
				Input: Join{
					Left:  Scan{Relation: "t", Alias: "x"},
					Right: Scan{Relation: "u", Alias: "x"},
				},
				Columns: []ProjectedColumn{{Col: ir.ColumnRef{Name: "a"}}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(tc.plan)
			assert.False(t, result.OK)
			assert.NotEmpty(t, result.Problems)
		})
	}
}
