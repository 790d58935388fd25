package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MarshalCanonical produces the byte-stable encoding of a QuerySpec used for
// fingerprinting. Two specs that parse to the same QuerySpec always encode
// to the same bytes:
//
//  1. Field order is fixed (schema, arity, output, from, where, group_by).
//  2. Identifiers are NFC-normalized; literal values keep their exact bytes.
//  3. Strings are encoded without HTML escaping.
//  4. Floats use the shortest round-tripping decimal form.
//
// This is the ONLY serialization that feeds content-addressed identity.
func MarshalCanonical(spec *QuerySpec) ([]byte, error) {
	if spec == nil {
		return nil, fmt.Errorf("cannot canonically encode nil spec")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString(`"schema":[`)
	for i, a := range spec.Schema {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"name":`)
		writeCanonicalIdent(&buf, a.Name)
		buf.WriteString(`,"type":`)
		writeCanonicalString(&buf, string(a.Type))
		buf.WriteByte('}')
	}
	buf.WriteString(`],"arity":`)
	buf.WriteString(strconv.Itoa(spec.Arity))

	buf.WriteString(`,"output":[`)
	for i, o := range spec.Output {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCanonicalIdent(&buf, o.String())
	}
	buf.WriteString(`],"from":[`)
	for i, r := range spec.From {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"alias":`)
		writeCanonicalIdent(&buf, r.Alias)
		buf.WriteString(`,"relation":`)
		writeCanonicalIdent(&buf, r.Relation)
		buf.WriteByte('}')
	}

	buf.WriteString(`],"where":`)
	if err := writeCanonicalPredicate(&buf, spec.Where); err != nil {
		return nil, err
	}

	buf.WriteString(`,"group_by":[`)
	for i, g := range spec.GroupBy {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCanonicalIdent(&buf, g.String())
	}
	buf.WriteString(`]}`)

	return buf.Bytes(), nil
}

// writeCanonicalIdent encodes an identifier, NFC-normalizing it first so
// composed and decomposed spellings of the same name encode identically.
// String literals never go through here: they bind as SQL parameters with
// their exact bytes, so the encoding must preserve those bytes.
func writeCanonicalIdent(buf *bytes.Buffer, s string) {
	writeCanonicalString(buf, NormalizeIdent(s))
}

func writeCanonicalString(buf *bytes.Buffer, s string) {
	// encoding/json with SetEscapeHTML(false) gives RFC 8785 string escaping.
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode appends a newline; drop it.
	buf.Truncate(buf.Len() - 1)
}

func writeCanonicalPredicate(buf *bytes.Buffer, p Predicate) error {
	switch node := p.(type) {
	case nil:
		buf.WriteString("null")
	case Compare:
		buf.WriteString(`{"cmp":{"left":`)
		if err := writeCanonicalOperand(buf, node.Left); err != nil {
			return err
		}
		buf.WriteString(`,"op":`)
		writeCanonicalString(buf, string(node.Op))
		buf.WriteString(`,"right":`)
		if err := writeCanonicalOperand(buf, node.Right); err != nil {
			return err
		}
		buf.WriteString(`}}`)
	case And:
		if err := writeCanonicalTerms(buf, "and", node.Terms); err != nil {
			return err
		}
	case Or:
		if err := writeCanonicalTerms(buf, "or", node.Terms); err != nil {
			return err
		}
	case Not:
		buf.WriteString(`{"not":`)
		if err := writeCanonicalPredicate(buf, node.Term); err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported predicate node in canonical encoding: %T", p)
	}
	return nil
}

func writeCanonicalTerms(buf *bytes.Buffer, kind string, terms []Predicate) error {
	buf.WriteString(`{"` + kind + `":[`)
	for i, t := range terms {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalPredicate(buf, t); err != nil {
			return err
		}
	}
	buf.WriteString(`]}`)
	return nil
}

func writeCanonicalOperand(buf *bytes.Buffer, o Operand) error {
	switch op := o.(type) {
	case Column:
		buf.WriteString(`{"col":`)
		writeCanonicalIdent(buf, op.Ref.String())
		buf.WriteByte('}')
	case Literal:
		buf.WriteString(`{"lit":`)
		switch v := op.Value.(type) {
		case String:
			writeCanonicalString(buf, string(v))
		case Int:
			buf.WriteString(strconv.FormatInt(int64(v), 10))
		case Float:
			buf.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
		case Bool:
			buf.WriteString(strconv.FormatBool(bool(v)))
		case Null:
			buf.WriteString("null")
		default:
			return fmt.Errorf("unsupported literal in canonical encoding: %T", op.Value)
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported operand in canonical encoding: %T", o)
	}
	return nil
}
