package spec

import "strings"

// sectionKey identifies one of the six specification fields.
type sectionKey string

const (
	keySchema    sectionKey = "S"
	keyArity     sectionKey = "n"
	keyOutput    sectionKey = "V"
	keyRange     sectionKey = "F"
	keyPredicate sectionKey = "sigma"
	keyGrouping  sectionKey = "G"
)

// requiredSections lists the keys every specification must supply, in
// reporting order.
var requiredSections = []sectionKey{keySchema, keyArity, keyOutput, keyRange, keyPredicate, keyGrouping}

// section is the AST node for one raw specification section: its key, its
// text (header remainder plus any continuation lines, joined with spaces),
// and the line its header appeared on.
type section struct {
	Key   sectionKey
	Value string
	Line  int
}

// scanSections splits the input into raw sections. It strips '#' comments
// and blank lines, recognizes case-insensitive "key:" headers, and appends
// non-header lines to the section currently open.
func scanSections(input string) ([]section, *ParseError) {
	var sections []section
	var open *section

	for i, raw := range strings.Split(input, "\n") {
		line := i + 1
		text := raw
		if idx := strings.IndexByte(text, '#'); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if key, rest, ok := matchHeader(text); ok {
			sections = append(sections, section{Key: key, Value: rest, Line: line})
			open = &sections[len(sections)-1]
			continue
		}

		if open == nil {
			return nil, parseErrorf(ErrStrayLine, "input", line, "content before any section header: %q", text)
		}
		if open.Value == "" {
			open.Value = text
		} else {
			open.Value += " " + text
		}
	}

	return sections, nil
}

// matchHeader recognizes a "key: rest" section header. Keys are matched
// case-insensitively and reported in canonical case.
func matchHeader(text string) (sectionKey, string, bool) {
	idx := strings.IndexByte(text, ':')
	if idx < 0 {
		return "", "", false
	}
	head := strings.ToLower(strings.TrimSpace(text[:idx]))
	rest := strings.TrimSpace(text[idx+1:])

	for _, key := range requiredSections {
		if head == strings.ToLower(string(key)) {
			return key, rest, true
		}
	}
	return "", "", false
}

// splitList splits a section value on commas and whitespace, dropping empty
// chunks. The phi format accepts either separator.
func splitList(s string) []string {
	var parts []string
	for _, chunk := range strings.Split(s, ",") {
		for _, p := range strings.Fields(chunk) {
			parts = append(parts, p)
		}
	}
	return parts
}
