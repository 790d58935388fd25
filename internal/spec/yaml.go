package spec

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/roach88/relc/internal/ir"
)

// yamlSpec is the YAML surface of a specification. Entry syntax inside the
// lists is identical to the text format (name:type, alias=relation,
// aggregate tokens).
type yamlSpec struct {
	Schema  []string `yaml:"schema"`
	Arity   *int     `yaml:"arity"`
	Output  []string `yaml:"output"`
	From    []string `yaml:"from"`
	Sigma   string   `yaml:"sigma"`
	GroupBy []string `yaml:"group_by"`
}

// ParseYAML reads a YAML-encoded specification. Unlike the text format, the
// output, sigma, and group_by keys may simply be absent: an absent key has
// the same meaning as the corresponding empty section.
func ParseYAML(input []byte) (*ir.QuerySpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(input))
	dec.KnownFields(true)

	var raw yamlSpec
	if err := dec.Decode(&raw); err != nil {
		return nil, parseErrorf(ErrBadYAML, "input", 0, "invalid YAML: %v", err)
	}

	if len(raw.Schema) == 0 {
		return nil, parseErrorf(ErrMissingSection, string(keySchema), 0, "schema key is missing or empty")
	}
	if raw.Arity == nil {
		return nil, parseErrorf(ErrMissingSection, string(keyArity), 0, "arity key is missing")
	}
	if *raw.Arity < 0 {
		return nil, parseErrorf(ErrBadArity, string(keyArity), 0, "arity must be non-negative, got %d", *raw.Arity)
	}
	if len(raw.From) == 0 {
		return nil, parseErrorf(ErrMissingSection, string(keyRange), 0, "from key is missing or empty")
	}

	return Fields{
		Schema:  raw.Schema,
		Arity:   *raw.Arity,
		Output:  raw.Output,
		From:    raw.From,
		Sigma:   raw.Sigma,
		GroupBy: raw.GroupBy,
	}.Build()
}
