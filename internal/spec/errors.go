package spec

import "fmt"

// Parse error codes (E100-E119).
const (
	ErrMissingSection   = "E101" // required section absent
	ErrDuplicateSection = "E102" // section given more than once
	ErrStrayLine        = "E103" // content before any section header
	ErrBadSchemaEntry   = "E104" // malformed name:type pair in S
	ErrBadArity         = "E105" // n is not an integer
	ErrBadOutputEntry   = "E106" // malformed entry in V
	ErrBadRangeEntry    = "E107" // malformed entry in F
	ErrBadPredicate     = "E108" // malformed sigma expression
	ErrBadGroupingEntry = "E109" // malformed entry in G
	ErrEmptyRange       = "E110" // F declares no relation
	ErrBadYAML          = "E111" // input is not a well-formed YAML document
)

// ParseError reports a malformed or missing specification section.
type ParseError struct {
	Code    string `json:"code"`
	Section string `json:"section"` // S, n, V, F, sigma, or G
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Section, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Section, e.Message)
}

func parseErrorf(code, section string, line int, format string, args ...any) *ParseError {
	return &ParseError{
		Code:    code,
		Section: section,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
}
