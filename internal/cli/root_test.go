package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with the given arguments and returns stdout, stderr,
// and the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeSpec drops a spec file into a temp dir and returns its path.
func writeSpec(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validSpec = `
S:     id:int, name:text, amount:float
n:     3
V:     name, amount
F:     sales
sigma: amount > 100
G:
`

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"compile", "validate", "explain", "run"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	cmd := NewRootCommand()
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("format"))
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	spec := writeSpec(t, "q.phi", validSpec)
	_, _, err := execute(t, "validate", "--format", "xml", spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.False(t, IsExitError(err))
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestExitError(t *testing.T) {
	err := WrapExitError(ExitValidate, "3 schema violation(s)", nil)
	assert.Equal(t, ExitValidate, GetExitCode(err))
	assert.True(t, IsExitError(err))
	assert.Equal(t, "3 schema violation(s)", err.Error())
}

func TestGetExitCode_PlainError(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
