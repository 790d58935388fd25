// Package harness runs conformance scenarios end to end: it seeds a
// throwaway SQLite database, compiles a specification through the full
// Parser → Validator → Builder → Emitter pipeline, executes the emitted
// query, and captures the SQL and the result rows for golden comparison.
//
// Scenarios are YAML files:
//
//	name: filtered-projection
//	description: row-level selection with a parameterized predicate
//	setup:
//	  - CREATE TABLE sales (id INTEGER, name TEXT, amount REAL)
//	  - INSERT INTO sales VALUES (1, 'widget', 150.0)
//	spec: |
//	  S: id:int, name:text, amount:float
//	  n: 3
//	  V: name, amount
//	  F: sales
//	  sigma: amount > 100
//	  G:
package harness

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/relc/internal/emit"
	"github.com/roach88/relc/internal/ir"
	"github.com/roach88/relc/internal/queryir"
	"github.com/roach88/relc/internal/querysql"
	"github.com/roach88/relc/internal/schema"
	"github.com/roach88/relc/internal/spec"
	"github.com/roach88/relc/internal/store"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies the scenario; it is also the golden file name.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description,omitempty"`

	// Setup contains SQL statements that seed the throwaway database.
	Setup []string `yaml:"setup"`

	// Spec is the specification text, inline in the phi format.
	Spec string `yaml:"spec"`
}

// Result captures everything a scenario produced.
type Result struct {
	Query    querysql.Query
	Artifact emit.Artifact
	// Rows is the TSV row output of executing the query.
	Rows     string
	RowCount int
}

// LoadScenario reads one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	return &s, nil
}

// LoadScenarios reads every *.yaml scenario under dir, sorted by filename
// for deterministic test ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var scenarios []*Scenario
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Run executes the scenario: seed, compile, execute. The database lives in
// workDir and is removed with it.
func (s *Scenario) Run(ctx context.Context, workDir string) (*Result, error) {
	dbPath := filepath.Join(workDir, s.Name+".db")
	if err := seed(dbPath, s.Setup); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	parsed, err := spec.Parse([]byte(s.Spec))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: parse: %w", s.Name, err)
	}
	if _, err := schema.Check(parsed); err != nil {
		return nil, fmt.Errorf("scenario %s: validate: %w", s.Name, err)
	}
	plan, err := queryir.Build(parsed)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: build: %w", s.Name, err)
	}
	query, err := querysql.Emit(plan)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: emit: %w", s.Name, err)
	}

	fingerprint, err := ir.Fingerprint(parsed)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	buildID, err := ir.BuildID(parsed)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	artifact := emit.Artifact{Query: query, Fingerprint: fingerprint, BuildID: buildID}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	defer st.Close()

	rows, err := st.Query(ctx, query.SQL, query.Params...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: execute: %w", s.Name, err)
	}
	defer rows.Close()

	var out bytes.Buffer
	count, err := store.StreamTSV(&out, rows)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: stream: %w", s.Name, err)
	}

	return &Result{
		Query:    query,
		Artifact: artifact,
		Rows:     out.String(),
		RowCount: count,
	}, nil
}

// seed creates the scenario database and applies the setup statements with
// a writable connection. The run itself goes through the read-only store.
func seed(dbPath string, setup []string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("opening seed database: %w", err)
	}
	defer db.Close()

	for i, stmt := range setup {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("setup statement %d: %w", i+1, err)
		}
	}
	return nil
}
