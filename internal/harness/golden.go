package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) *Result {
	t.Helper()

	result, err := s.Run(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("scenario %s failed: %v", s.Name, err)
	}

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, s.Name, []byte(result.Snapshot()))
	return result
}

// Snapshot renders the deterministic scenario snapshot compared against the
// golden file: the emitted SQL, the bound parameters, and the result rows.
// The build ID is not part of the snapshot.
func (r *Result) Snapshot() string {
	var sb strings.Builder
	sb.WriteString("sql: ")
	sb.WriteString(r.Query.SQL)
	sb.WriteString("\nparams:")
	if len(r.Query.Params) == 0 {
		sb.WriteString(" none")
	}
	for _, p := range r.Query.Params {
		fmt.Fprintf(&sb, " %#v", p)
	}
	fmt.Fprintf(&sb, "\ncolumns: %s\n", strings.Join(r.Query.Columns, ", "))
	fmt.Fprintf(&sb, "rows (%d):\n", r.RowCount)
	sb.WriteString(r.Rows)
	return sb.String()
}
