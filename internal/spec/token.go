package spec

import (
	"fmt"
	"strings"
)

type tokenType string

const (
	tEnd    tokenType = "end"
	tIdent  tokenType = "identifier"
	tNumber tokenType = "number"
	tString tokenType = "string"
	tOp     tokenType = "operator"
	tLParen tokenType = "("
	tRParen tokenType = ")"
)

type token struct {
	t   tokenType
	val string
	pos int // byte offset in the expression, for diagnostics
}

func (t token) String() string {
	return fmt.Sprintf("[%s %s]", t.t, t.val)
}

// comparison operators, longest first so <= wins over <.
var compareOps = []string{"!=", "<=", ">=", "<>", "=", "<", ">"}

// lexer tokenizes a sigma expression.
type lexer struct {
	src  string
	pos  int
	peek *token
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) peekToken() (token, error) {
	if l.peek == nil {
		t, err := l.next()
		if err != nil {
			return token{}, err
		}
		l.peek = &t
	}
	return *l.peek, nil
}

func (l *lexer) nextToken() (token, error) {
	if l.peek != nil {
		t := *l.peek
		l.peek = nil
		return t, nil
	}
	return l.next()
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{t: tEnd, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case c == '(':
		l.pos++
		return token{t: tLParen, val: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{t: tRParen, val: ")", pos: start}, nil
	case c == '\'':
		return l.quotedString()
	case c >= '0' && c <= '9':
		return l.number()
	case c == '-' && l.pos+1 < len(l.src) && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9':
		return l.number()
	case isIdentStart(c):
		return l.ident()
	}

	for _, op := range compareOps {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.pos += len(op)
			return token{t: tOp, val: op, pos: start}, nil
		}
	}

	return token{}, fmt.Errorf("unexpected character %q at offset %d", c, start)
}

func (l *lexer) quotedString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\'' {
			// '' is an escaped quote inside the string
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '\'' {
				sb.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			return token{t: tString, val: sb.String(), pos: start}, nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, fmt.Errorf("unterminated string literal at offset %d", start)
}

func (l *lexer) number() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	seenDot := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c >= '0' && c <= '9' {
			l.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			l.pos++
			continue
		}
		break
	}
	return token{t: tNumber, val: l.src[start:l.pos], pos: start}, nil
}

func (l *lexer) ident() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && (isIdentPart(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.pos++
	}
	return token{t: tIdent, val: l.src[start:l.pos], pos: start}, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
