package ir

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AttrType is the declared semantic type of a schema attribute.
type AttrType string

const (
	TypeInt   AttrType = "int"
	TypeFloat AttrType = "float"
	TypeText  AttrType = "text"
	TypeBool  AttrType = "bool"
)

// ValidTypes lists the accepted attribute type names in declaration order.
var ValidTypes = []AttrType{TypeInt, TypeFloat, TypeText, TypeBool}

// ParseAttrType converts a type name to an AttrType.
func ParseAttrType(s string) (AttrType, error) {
	for _, t := range ValidTypes {
		if string(t) == strings.ToLower(s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown attribute type %q (want one of int, float, text, bool)", s)
}

// Numeric reports whether the type participates in arithmetic aggregates.
func (t AttrType) Numeric() bool {
	return t == TypeInt || t == TypeFloat
}

// Attribute is one entry of the schema S: a name with a semantic type.
type Attribute struct {
	Name string   `json:"name" yaml:"name"`
	Type AttrType `json:"type" yaml:"type"`
}

// RelationRef is one entry of the range clause F: an alias bound to a base
// relation name. A bare relation in the input gets itself as alias.
type RelationRef struct {
	Alias    string `json:"alias" yaml:"alias"`
	Relation string `json:"relation" yaml:"relation"`
}

// ColumnRef is an attribute reference, optionally qualified by a relation
// alias. Qualifier is empty for unqualified references.
type ColumnRef struct {
	Qualifier string `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	Name      string `json:"name" yaml:"name"`
}

func (c ColumnRef) String() string {
	if c.Qualifier != "" {
		return c.Qualifier + "." + c.Name
	}
	return c.Name
}

// AggFunc is an aggregate function name. The zero value means "no aggregate".
type AggFunc string

const (
	AggNone  AggFunc = ""
	AggSum   AggFunc = "sum"
	AggCount AggFunc = "count"
	AggAvg   AggFunc = "avg"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
)

// ParseAggFunc recognizes an aggregate function name, case-insensitive.
func ParseAggFunc(s string) (AggFunc, bool) {
	switch strings.ToLower(s) {
	case "sum":
		return AggSum, true
	case "count":
		return AggCount, true
	case "avg":
		return AggAvg, true
	case "min":
		return AggMin, true
	case "max":
		return AggMax, true
	}
	return AggNone, false
}

// OutputColumn is one entry of the output list V: a column reference with an
// optional aggregate applied to it. Count may target the whole row, written
// count_* in the phi format, in which case Col.Name is "*".
type OutputColumn struct {
	Agg AggFunc   `json:"agg,omitempty" yaml:"agg,omitempty"`
	Col ColumnRef `json:"col" yaml:"col"`
}

func (o OutputColumn) String() string {
	if o.Agg != AggNone {
		return string(o.Agg) + "(" + o.Col.String() + ")"
	}
	return o.Col.String()
}

// QuerySpec aggregates the six fields of a specification. It is constructed
// by a front end, checked once by the schema validator, and read-only from
// then on.
type QuerySpec struct {
	// Schema is S: the ordered attributes of the queried relation(s).
	Schema []Attribute `json:"schema"`
	// Arity is n: the declared attribute count, invariant Arity == len(Schema).
	Arity int `json:"arity"`
	// Output is V: the projection list. Empty means "all of Schema".
	Output []OutputColumn `json:"output,omitempty"`
	// From is F: the scanned relations with their aliases, in declared order.
	From []RelationRef `json:"from"`
	// Where is sigma: the selection predicate. Nil means always-true.
	Where Predicate `json:"-"`
	// GroupBy is G: the grouping keys, in declared order. Empty means no
	// grouping.
	GroupBy []ColumnRef `json:"group_by,omitempty"`
}

// Attribute returns the schema entry with the given name, if any.
func (s *QuerySpec) Attribute(name string) (Attribute, bool) {
	for _, a := range s.Schema {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// RelationFor returns the range-clause entry with the given alias, if any.
func (s *QuerySpec) RelationFor(alias string) (RelationRef, bool) {
	for _, r := range s.From {
		if r.Alias == alias {
			return r, true
		}
	}
	return RelationRef{}, false
}

// NormalizeIdent puts an identifier into NFC form. Every front end runs
// names through this before building a QuerySpec so that schema lookups and
// the canonical encoding are byte-stable regardless of the input's Unicode
// composition.
func NormalizeIdent(s string) string {
	return norm.NFC.String(s)
}
