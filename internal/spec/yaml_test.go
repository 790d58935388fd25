package spec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relc/internal/ir"
)

func TestParseYAML_Basic(t *testing.T) {
	input := `
schema: [id:int, name:text, amount:float]
arity: 3
output: [name, amount]
from: [sales]
sigma: amount > 100
`
	spec, err := ParseYAML([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, 3, spec.Arity)
	assert.Equal(t, []ir.RelationRef{{Alias: "sales", Relation: "sales"}}, spec.From)
	assert.Equal(t, ir.Compare{
		Left:  ir.Column{Ref: ir.ColumnRef{Name: "amount"}},
		Op:    ir.OpGt,
		Right: ir.Literal{Value: ir.Int(100)},
	}, spec.Where)
}

func TestParseYAML_MatchesTextFrontEnd(t *testing.T) {
	// The two front ends must produce identical QuerySpecs for equivalent
	// inputs; the fingerprint depends on it.
	fromText, err := Parse([]byte(`
S:     region:text, amount:int
n:     2
V:     region, sum_amount
F:     s=sales
sigma: amount > 0 AND region != 'unknown'
G:     region
`))
	require.NoError(t, err)

	fromYAML, err := ParseYAML([]byte(`
schema: [region:text, amount:int]
arity: 2
output: [region, sum_amount]
from: [s=sales]
sigma: amount > 0 AND region != 'unknown'
group_by: [region]
`))
	require.NoError(t, err)

	if diff := cmp.Diff(fromText, fromYAML); diff != "" {
		t.Errorf("front ends disagree (-text +yaml):\n%s", diff)
	}

	textFP, err := ir.Fingerprint(fromText)
	require.NoError(t, err)
	yamlFP, err := ir.Fingerprint(fromYAML)
	require.NoError(t, err)
	assert.Equal(t, textFP, yamlFP)
}

func TestParseYAML_OptionalKeysAbsent(t *testing.T) {
	input := `
schema: [id:int]
arity: 1
from: [t]
`
	spec, err := ParseYAML([]byte(input))
	require.NoError(t, err)
	assert.Empty(t, spec.Output)
	assert.Nil(t, spec.Where)
	assert.Empty(t, spec.GroupBy)
}

func TestParseYAML_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		wantCode string
	}{
		{
			name:     "unknown key",
			input:    "schema: [id:int]\narity: 1\nfrom: [t]\nextra: 1\n",
			wantCode: ErrBadYAML,
		},
		{
			name:     "missing schema",
			input:    "arity: 1\nfrom: [t]\n",
			wantCode: ErrMissingSection,
		},
		{
			name:     "missing arity",
			input:    "schema: [id:int]\nfrom: [t]\n",
			wantCode: ErrMissingSection,
		},
		{
			name:     "negative arity",
			input:    "schema: [id:int]\narity: -2\nfrom: [t]\n",
			wantCode: ErrBadArity,
		},
		{
			name:     "missing from",
			input:    "schema: [id:int]\narity: 1\n",
			wantCode: ErrMissingSection,
		},
		{
			name:     "bad sigma",
			input:    "schema: [id:int]\narity: 1\nfrom: [t]\nsigma: 'id >'\n",
			wantCode: ErrBadPredicate,
		},
		{
			name:     "broken syntax",
			input:    "schema: [id:int\narity: 1\n",
			wantCode: ErrBadYAML,
		},
		{
			name:     "not yaml at all",
			input:    "S: id:int\nn: 1\n",
			wantCode: ErrBadYAML,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tc.input))
			require.Error(t, err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.wantCode, perr.Code)
		})
	}
}
