package schema

import (
	"testing"

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

func TestCheck_Valid(t *testing.T) {
	spec := salesSpec()
	got, err := Check(spec)
	require.NoError(t, err)
	assert.Same(t, spec, got, "a valid spec passes through unchanged")
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_Violations(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*ir.QuerySpec)
		want   []string
	}{
		{
			name:   "arity mismatch",
			mutate: func(s *ir.QuerySpec) { s.Arity = 5 },
			want:   []string{ErrArityMismatch},
		},
		{
			name: "duplicate attribute",
			mutate: func(s *ir.QuerySpec) {
				s.Schema = append(s.Schema, ir.Attribute{Name: "name", Type: ir.TypeText})
				s.Arity = 4
			},
			want: []string{ErrDuplicateAttr},
		},
		{
			name: "output not in schema",
			mutate: func(s *ir.QuerySpec) {
				s.Output = []ir.OutputColumn{{Col: ir.ColumnRef{Name: "region"}}}
			},
			want: []string{ErrUnknownOutput},
		},
		{
			name: "duplicate output",
			mutate: func(s *ir.QuerySpec) {
				s.Output = []ir.OutputColumn{
					{Col: ir.ColumnRef{Name: "name"}},
					{Col: ir.ColumnRef{Name: "name"}},
				}
			},
			want: []string{ErrDuplicateOutput},
		},
		{
			name: "duplicate output under the single relation's alias",
			mutate: func(s *ir.QuerySpec) {
				s.Output = []ir.OutputColumn{
					{Col: ir.ColumnRef{Name: "name"}},
					{Col: ir.ColumnRef{Qualifier: "sales", Name: "name"}},
				}
			},
			want: []string{ErrDuplicateOutput},
		},
		{
			name: "sum over text attribute",
			mutate: func(s *ir.QuerySpec) {
				s.Output = []ir.OutputColumn{{Agg: ir.AggSum, Col: ir.ColumnRef{Name: "name"}}}
			},
			want: []string{ErrBadAggregateType},
		},
		{
			name: "predicate attribute not in schema",
			mutate: func(s *ir.QuerySpec) {
				s.Where = ir.Compare{
					Left:  ir.Column{Ref: ir.ColumnRef{Name: "region"}},
					Op:    ir.OpEq,
					Right: ir.Literal{Value: ir.String("emea")},
				}
			},
			want: []string{ErrUnknownPredAttr},
		},
		{
			name: "group key not in schema",
			mutate: func(s *ir.QuerySpec) {
				s.GroupBy = []ir.ColumnRef{{Name: "region"}}
			},
			want: []string{ErrUnknownGroupKey},
		},
		{
			name: "unknown alias qualifier",
			mutate: func(s *ir.QuerySpec) {
				s.Output = []ir.OutputColumn{{Col: ir.ColumnRef{Qualifier: "x", Name: "name"}}}
			},
			want: []string{ErrUnknownAlias},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			spec := salesSpec()
			tc.mutate(spec)
			assert.Equal(t, tc.want, codes(Validate(spec)))
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	spec := salesSpec()
	spec.Arity = 7
	spec.Output = []ir.OutputColumn{{Col: ir.ColumnRef{Name: "region"}}}
	spec.GroupBy = []ir.ColumnRef{{Name: "quarter"}}

	errs := Validate(spec)
	assert.ElementsMatch(t,
		[]string{ErrArityMismatch, ErrUnknownOutput, ErrUnknownGroupKey},
		codes(errs),
		"every violation is reported, not just the first")
}

func TestValidate_NamesTheOffendingAttribute(t *testing.T) {
	spec := salesSpec()
	spec.Output = []ir.OutputColumn{{Col: ir.ColumnRef{Name: "region"}}}

	errs := Validate(spec)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, `"region"`)
	assert.Equal(t, "V", errs[0].Field)
}

func TestCheck_SchemaErrorMessage(t *testing.T) {
	spec := salesSpec()
	spec.Arity = 7
	spec.Output = []ir.OutputColumn{{Col: ir.ColumnRef{Name: "region"}}}

	_, err := Check(spec)
	require.Error(t, err)

	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Len(t, serr.Violations, 2)
	assert.Contains(t, err.Error(), "2 schema violation(s)")
	assert.Contains(t, err.Error(), "[E201]")
	assert.Contains(t, err.Error(), "[E203]")
}

func TestValidate_CountStarNeedsNoAttribute(t *testing.T) {
	spec := salesSpec()
	spec.Output = []ir.OutputColumn{{Agg: ir.AggCount, Col: ir.ColumnRef{Name: "*"}}}
	spec.GroupBy = []ir.ColumnRef{{Name: "name"}}

	assert.Empty(t, Validate(spec))
}

func multiRelationSpec() *ir.QuerySpec {
	return &ir.QuerySpec{
		Schema: []ir.Attribute{
			{Name: "id", Type: ir.TypeInt},
			{Name: "name", Type: ir.TypeText},
			{Name: "code", Type: ir.TypeText},
		},
		Arity: 3,
		Output: []ir.OutputColumn{
			{Col: ir.ColumnRef{Qualifier: "s", Name: "name"}},
			{Col: ir.ColumnRef{Qualifier: "r", Name: "code"}},
		},
		From: []ir.RelationRef{
			{Alias: "s", Relation: "sales"},
			{Alias: "r", Relation: "regions"},
		},
	}
}

func TestValidate_MultiRelation(t *testing.T) {
	t.Run("qualified references pass", func(t *testing.T) {
		assert.Empty(t, Validate(multiRelationSpec()))
	})

	t.Run("unqualified reference is ambiguous", func(t *testing.T) {
		spec := multiRelationSpec()
		spec.Output[0] = ir.OutputColumn{Col: ir.ColumnRef{Name: "name"}}
		got := codes(Validate(spec))
		assert.Contains(t, got, ErrAmbiguousRef)
	})

	t.Run("unused alias is flagged", func(t *testing.T) {
		spec := multiRelationSpec()
		spec.Output = []ir.OutputColumn{
			{Col: ir.ColumnRef{Qualifier: "s", Name: "name"}},
			{Col: ir.ColumnRef{Qualifier: "s", Name: "id"}},
		}
		assert.Equal(t, []string{ErrUnusedAlias}, codes(Validate(spec)))
	})

	t.Run("single relation never flags its alias", func(t *testing.T) {
		spec := salesSpec()
		spec.Output = nil
		spec.Where = nil
		assert.Empty(t, Validate(spec))
	})
}
