package spec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/relc/internal/ir"
)

// ParsePredicate parses a sigma expression into a predicate tree. An input
// that is empty or all whitespace yields nil (the always-true predicate).
//
// Grammar, loosest binding first:
//
//	expr    = term { OR term }
//	term    = factor { AND factor }
//	factor  = NOT factor | "(" expr ")" | comparison
//	comparison = operand op operand
//	operand = identifier | number | string | true | false
//
// The YAML and CUE front ends reuse this for their sigma strings.
func ParsePredicate(src string) (ir.Predicate, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}

	p := &predicateParser{lex: newLexer(src)}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	end, err := p.lex.nextToken()
	if err != nil {
		return nil, err
	}
	if end.t != tEnd {
		return nil, fmt.Errorf("unexpected %s after end of expression", end)
	}
	return pred, nil
}

type predicateParser struct {
	lex *lexer
}

func (p *predicateParser) parseOr() (ir.Predicate, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []ir.Predicate{first}
	for {
		if !p.acceptKeyword("or") {
			break
		}
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return ir.Or{Terms: terms}, nil
}

func (p *predicateParser) parseAnd() (ir.Predicate, error) {
	first, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	terms := []ir.Predicate{first}
	for {
		if !p.acceptKeyword("and") {
			break
		}
		next, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return ir.And{Terms: terms}, nil
}

func (p *predicateParser) parseFactor() (ir.Predicate, error) {
	if p.acceptKeyword("not") {
		term, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return ir.Not{Term: term}, nil
	}

	t, err := p.lex.peekToken()
	if err != nil {
		return nil, err
	}
	if t.t == tLParen {
		if _, err := p.lex.nextToken(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, err := p.lex.nextToken()
		if err != nil {
			return nil, err
		}
		if closing.t != tRParen {
			return nil, fmt.Errorf("expected ')' but found %s", closing)
		}
		return inner, nil
	}

	return p.parseComparison()
}

func (p *predicateParser) parseComparison() (ir.Predicate, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	opTok, err := p.lex.nextToken()
	if err != nil {
		return nil, err
	}
	if opTok.t != tOp {
		return nil, fmt.Errorf("expected comparison operator but found %s", opTok)
	}
	op, err := compareOp(opTok.val)
	if err != nil {
		return nil, err
	}

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	return ir.Compare{Left: left, Op: op, Right: right}, nil
}

func (p *predicateParser) parseOperand() (ir.Operand, error) {
	t, err := p.lex.nextToken()
	if err != nil {
		return nil, err
	}

	switch t.t {
	case tString:
		return ir.Literal{Value: ir.String(t.val)}, nil

	case tNumber:
		if strings.ContainsRune(t.val, '.') {
			f, err := strconv.ParseFloat(t.val, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q: %w", t.val, err)
			}
			return ir.Literal{Value: ir.Float(f)}, nil
		}
		n, err := strconv.ParseInt(t.val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.val, err)
		}
		return ir.Literal{Value: ir.Int(n)}, nil

	case tIdent:
		switch strings.ToLower(t.val) {
		case "true":
			return ir.Literal{Value: ir.Bool(true)}, nil
		case "false":
			return ir.Literal{Value: ir.Bool(false)}, nil
		case "and", "or", "not":
			return nil, fmt.Errorf("keyword %q cannot be used as an operand", t.val)
		}
		ref, err := parseColumnRef(t.val)
		if err != nil {
			return nil, err
		}
		return ir.Column{Ref: ref}, nil

	default:
		return nil, fmt.Errorf("expected operand but found %s", t)
	}
}

// acceptKeyword consumes the next token if it is the given keyword,
// case-insensitive.
func (p *predicateParser) acceptKeyword(kw string) bool {
	t, err := p.lex.peekToken()
	if err != nil || t.t != tIdent || !strings.EqualFold(t.val, kw) {
		return false
	}
	_, _ = p.lex.nextToken()
	return true
}

func compareOp(s string) (ir.CompareOp, error) {
	switch s {
	case "=":
		return ir.OpEq, nil
	case "!=", "<>":
		return ir.OpNe, nil
	case "<":
		return ir.OpLt, nil
	case "<=":
		return ir.OpLe, nil
	case ">":
		return ir.OpGt, nil
	case ">=":
		return ir.OpGe, nil
	}
	return "", fmt.Errorf("unknown comparison operator %q", s)
}

// parseColumnRef splits an optionally qualified attribute reference on its
// first dot and NFC-normalizes both parts.
func parseColumnRef(s string) (ir.ColumnRef, error) {
	if s == "" {
		return ir.ColumnRef{}, fmt.Errorf("empty attribute reference")
	}
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		qual, name := s[:idx], s[idx+1:]
		if qual == "" || name == "" || strings.ContainsRune(name, '.') {
			return ir.ColumnRef{}, fmt.Errorf("malformed attribute reference %q", s)
		}
		return ir.ColumnRef{Qualifier: ir.NormalizeIdent(qual), Name: ir.NormalizeIdent(name)}, nil
	}
	return ir.ColumnRef{Name: ir.NormalizeIdent(s)}, nil
}
