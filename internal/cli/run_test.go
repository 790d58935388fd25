package cli

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE sales (id INTEGER, name TEXT, amount REAL)`,
		`INSERT INTO sales VALUES (1, 'widget', 150.0)`,
		`INSERT INTO sales VALUES (2, 'gadget', 90.0)`,
		`INSERT INTO sales VALUES (3, 'gizmo', 200.5)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestValidate_Valid(t *testing.T) {
	spec := writeSpec(t, "q.phi", validSpec)

	stdout, _, err := execute(t, "validate", spec)
	require.NoError(t, err)
	assert.Contains(t, stdout, "is valid")
	assert.Contains(t, stdout, "3 attribute(s)")
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	spec := writeSpec(t, "bad.phi",
		"S: id:int\nn: 3\nV: region\nF: t\nsigma:\nG: quarter\n")

	stdout, _, err := execute(t, "--verbose", "validate", spec)
	require.Error(t, err)
	assert.Equal(t, ExitValidate, GetExitCode(err))
	assert.Contains(t, stdout, "3 schema violation(s)")
	// All three codes survive into the full error message.
	assert.Contains(t, err.Error(), "[E201]")
	assert.Contains(t, err.Error(), "[E203]")
	assert.Contains(t, err.Error(), "[E207]")
}

func TestExplain(t *testing.T) {
	spec := writeSpec(t, "q.phi", validSpec)

	stdout, _, err := execute(t, "explain", spec)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Project [name, amount]")
	assert.Contains(t, stdout, "Filter amount > 100")
	assert.Contains(t, stdout, "Scan sales")
	assert.Contains(t, stdout, "sql: SELECT name, amount FROM sales WHERE amount > ?")
	assert.Contains(t, stdout, "param 1: 100")
}

func TestRun(t *testing.T) {
	spec := writeSpec(t, "q.phi", validSpec)
	db := seedDB(t)

	stdout, _, err := execute(t, "run", spec, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "gizmo\t200.5\nwidget\t150\n", stdout)
}

func TestRun_VerboseShowsSQLOnStderr(t *testing.T) {
	spec := writeSpec(t, "q.phi", validSpec)
	db := seedDB(t)

	stdout, stderr, err := execute(t, "--verbose", "run", spec, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stderr, "sql: SELECT")
	assert.NotContains(t, stdout, "sql:", "rows on stdout stay clean")
}

func TestRun_RequiresDB(t *testing.T) {
	spec := writeSpec(t, "q.phi", validSpec)

	_, _, err := execute(t, "run", spec)
	require.Error(t, err)
	assert.False(t, IsExitError(err), "missing required flag is a cobra error")
}

func TestRun_MissingDatabase(t *testing.T) {
	spec := writeSpec(t, "q.phi", validSpec)

	_, _, err := execute(t, "run", spec, "--db", filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRun_MissingTable(t *testing.T) {
	spec := writeSpec(t, "q.phi", validSpec)
	db := filepath.Join(t.TempDir(), "empty.db")

	conn, err := sql.Open("sqlite3", db)
	require.NoError(t, err)
	_, err = conn.Exec("CREATE TABLE unrelated (x INTEGER)")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, _, err = execute(t, "run", spec, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
