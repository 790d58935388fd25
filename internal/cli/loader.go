package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/relc/internal/cuespec"
	"github.com/roach88/relc/internal/emit"
	"github.com/roach88/relc/internal/ir"
	"github.com/roach88/relc/internal/queryir"
	"github.com/roach88/relc/internal/querysql"
	"github.com/roach88/relc/internal/schema"
	"github.com/roach88/relc/internal/spec"
)

// LoadSpec reads a specification file, dispatching on extension:
// .yaml/.yml → YAML front end, .cue → CUE front end, anything else → the
// textual phi format.
func LoadSpec(path string) (*ir.QuerySpec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading spec file: %w", err)
		}
		return spec.ParseYAML(data)
	case ".cue":
		return cuespec.Load(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading spec file: %w", err)
		}
		return spec.Parse(data)
	}
}

// Compiled bundles the result of every pipeline stage for one spec file.
type Compiled struct {
	Spec     *ir.QuerySpec
	Plan     *queryir.Project
	Query    querysql.Query
	Artifact emit.Artifact
}

// CompileFile runs the full pipeline on a spec file. Errors keep their
// stage-specific types so callers can classify them with StageOf.
func CompileFile(path string) (*Compiled, error) {
	parsed, err := LoadSpec(path)
	if err != nil {
		return nil, err
	}
	if _, err := schema.Check(parsed); err != nil {
		return nil, err
	}
	plan, err := queryir.Build(parsed)
	if err != nil {
		return nil, err
	}
	query, err := querysql.Emit(plan)
	if err != nil {
		return nil, err
	}

	fingerprint, err := ir.Fingerprint(parsed)
	if err != nil {
		return nil, err
	}
	buildID, err := ir.BuildID(parsed)
	if err != nil {
		return nil, err
	}

	return &Compiled{
		Spec:  parsed,
		Plan:  plan,
		Query: query,
		Artifact: emit.Artifact{
			Query:       query,
			Fingerprint: fingerprint,
			BuildID:     buildID,
		},
	}, nil
}
