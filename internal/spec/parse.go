package spec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/relc/internal/ir"
)

// Parse reads a textual specification and produces a QuerySpec. The result
// is structurally well formed but not yet validated against the schema;
// callers pass it through schema.Validate before building a plan.
func Parse(input []byte) (*ir.QuerySpec, error) {
	sections, perr := scanSections(string(input))
	if perr != nil {
		return nil, perr
	}

	byKey := make(map[sectionKey]section, len(sections))
	for _, s := range sections {
		if prev, dup := byKey[s.Key]; dup {
			return nil, parseErrorf(ErrDuplicateSection, string(s.Key), s.Line,
				"section already given on line %d", prev.Line)
		}
		byKey[s.Key] = s
	}
	for _, key := range requiredSections {
		if _, ok := byKey[key]; !ok {
			return nil, parseErrorf(ErrMissingSection, string(key), 0, "required section is missing")
		}
	}

	spec := &ir.QuerySpec{}
	var err *ParseError

	if spec.Schema, err = parseSchema(byKey[keySchema]); err != nil {
		return nil, err
	}
	if spec.Arity, err = parseArity(byKey[keyArity]); err != nil {
		return nil, err
	}
	if spec.Output, err = parseOutput(byKey[keyOutput], spec.Schema); err != nil {
		return nil, err
	}
	if spec.From, err = parseRange(byKey[keyRange]); err != nil {
		return nil, err
	}
	if spec.GroupBy, err = parseGrouping(byKey[keyGrouping]); err != nil {
		return nil, err
	}

	sigma := byKey[keyPredicate]
	pred, predErr := ParsePredicate(sigma.Value)
	if predErr != nil {
		return nil, parseErrorf(ErrBadPredicate, string(keyPredicate), sigma.Line, "%v", predErr)
	}
	spec.Where = pred

	return spec, nil
}

// parseSchema reads S: comma-separated name:type pairs. Entries are split on
// commas only, so whitespace around the colon is tolerated.
func parseSchema(s section) ([]ir.Attribute, *ParseError) {
	var attrs []ir.Attribute
	for _, chunk := range strings.Split(s.Value, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		name, typeName, ok := strings.Cut(chunk, ":")
		if !ok {
			return nil, parseErrorf(ErrBadSchemaEntry, string(s.Key), s.Line,
				"expected name:type but found %q", chunk)
		}
		name = strings.TrimSpace(name)
		if name == "" || !validIdent(name) {
			return nil, parseErrorf(ErrBadSchemaEntry, string(s.Key), s.Line,
				"invalid attribute name %q", name)
		}
		attrType, err := ir.ParseAttrType(strings.TrimSpace(typeName))
		if err != nil {
			return nil, parseErrorf(ErrBadSchemaEntry, string(s.Key), s.Line, "attribute %q: %v", name, err)
		}
		attrs = append(attrs, ir.Attribute{Name: ir.NormalizeIdent(name), Type: attrType})
	}
	if len(attrs) == 0 {
		return nil, parseErrorf(ErrBadSchemaEntry, string(s.Key), s.Line, "schema declares no attributes")
	}
	return attrs, nil
}

// parseArity reads n: a single integer.
func parseArity(s section) (int, *ParseError) {
	fields := strings.Fields(s.Value)
	if len(fields) != 1 {
		return 0, parseErrorf(ErrBadArity, string(s.Key), s.Line,
			"expected a single integer but found %q", s.Value)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, parseErrorf(ErrBadArity, string(s.Key), s.Line,
			"expected a non-negative integer but found %q", fields[0])
	}
	return n, nil
}

// Aggregate tokens: sum_amount, count_*, avg_price. Older phi tooling wrote
// a "<digits>_" grouping-variable prefix; it is accepted and ignored.
var aggTokenRe = regexp.MustCompile(`^(?:\d+_)?(?i:(sum|count|avg|min|max))_(.+)$`)

// parseOutput reads V: attribute references or aggregate tokens. An entry
// that exactly names a schema attribute is always read as a plain column,
// so attributes that happen to look like aggregate tokens stay addressable.
func parseOutput(s section, schema []ir.Attribute) ([]ir.OutputColumn, *ParseError) {
	var out []ir.OutputColumn
	for _, entry := range splitList(s.Value) {
		col, err := parseOutputEntry(entry, schema)
		if err != nil {
			return nil, parseErrorf(ErrBadOutputEntry, string(s.Key), s.Line, "%v", err)
		}
		out = append(out, col)
	}
	return out, nil
}

func parseOutputEntry(entry string, schema []ir.Attribute) (ir.OutputColumn, error) {
	normalized := ir.NormalizeIdent(entry)
	for _, a := range schema {
		if a.Name == normalized {
			return ir.OutputColumn{Col: ir.ColumnRef{Name: a.Name}}, nil
		}
	}

	if m := aggTokenRe.FindStringSubmatch(entry); m != nil {
		fn, _ := ir.ParseAggFunc(m[1])
		target := m[2]
		if target == "*" {
			if fn != ir.AggCount {
				return ir.OutputColumn{}, fmt.Errorf("aggregate %s cannot target '*' (only count)", fn)
			}
			return ir.OutputColumn{Agg: fn, Col: ir.ColumnRef{Name: "*"}}, nil
		}
		ref, err := parseColumnRef(target)
		if err != nil {
			return ir.OutputColumn{}, err
		}
		return ir.OutputColumn{Agg: fn, Col: ref}, nil
	}

	ref, err := parseColumnRef(entry)
	if err != nil {
		return ir.OutputColumn{}, err
	}
	return ir.OutputColumn{Col: ref}, nil
}

// parseRange reads F: comma-separated alias=relation pairs or bare relation
// names. Split on commas only, so whitespace around '=' is tolerated.
func parseRange(s section) ([]ir.RelationRef, *ParseError) {
	var rels []ir.RelationRef
	seen := make(map[string]bool)
	for _, chunk := range strings.Split(s.Value, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		alias, relation, hasAlias := strings.Cut(chunk, "=")
		if !hasAlias {
			alias, relation = chunk, chunk
		}
		alias = strings.TrimSpace(alias)
		relation = strings.TrimSpace(relation)
		if !validIdent(alias) || !validIdent(relation) {
			return nil, parseErrorf(ErrBadRangeEntry, string(s.Key), s.Line,
				"expected alias=relation or relation but found %q", chunk)
		}
		alias = ir.NormalizeIdent(alias)
		if seen[alias] {
			return nil, parseErrorf(ErrBadRangeEntry, string(s.Key), s.Line,
				"duplicate alias %q", alias)
		}
		seen[alias] = true
		rels = append(rels, ir.RelationRef{Alias: alias, Relation: ir.NormalizeIdent(relation)})
	}
	if len(rels) == 0 {
		return nil, parseErrorf(ErrEmptyRange, string(s.Key), s.Line, "range clause declares no relation")
	}
	return rels, nil
}

// parseGrouping reads G: attribute references.
func parseGrouping(s section) ([]ir.ColumnRef, *ParseError) {
	var keys []ir.ColumnRef
	for _, entry := range splitList(s.Value) {
		ref, err := parseColumnRef(entry)
		if err != nil {
			return nil, parseErrorf(ErrBadGroupingEntry, string(s.Key), s.Line, "%v", err)
		}
		keys = append(keys, ref)
	}
	return keys, nil
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if i == 0 && !isIdentStart(s[i]) {
			return false
		}
		if i > 0 && !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
