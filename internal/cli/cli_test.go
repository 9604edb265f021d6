package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/linsolve"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSolve_Text(t *testing.T) {
	out, err := run(t, "solve", "1 x + 0 y = 1", "1 x + 1 y = 3")
	require.NoError(t, err)
	assert.Equal(t, "x = 1, y = 2\n", out)
}

func TestSolve_ExactJSON(t *testing.T) {
	out, err := run(t, "solve", "--exact", "--format", "json", "x + 2y = 1", "3x - y = 0")
	require.NoError(t, err)

	var got solveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "1/7", got.XExact)
	assert.Equal(t, "3/7", got.YExact)
	assert.InDelta(t, 3.0/7, got.Y, 1e-12)
}

func TestSolve_SingularFails(t *testing.T) {
	_, err := run(t, "solve", "x + y = 2", "2x + 2y = 4")
	require.Error(t, err)
	assert.ErrorIs(t, err, linsolve.ErrSingular)
}

func TestSolve_ParseErrorJSON(t *testing.T) {
	out, err := run(t, "solve", "--format", "json", "x + y = 2", "x + y")
	require.Error(t, err)

	var got errorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "parse", got.Kind)
	assert.Equal(t, 2, got.Equation)
}

func TestSolve_WrongArgCount(t *testing.T) {
	_, err := run(t, "solve", "x + y = 2")
	assert.Error(t, err)
}

func TestSolve_BadFormat(t *testing.T) {
	_, err := run(t, "solve", "--format", "xml", "x = 1", "y = 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestRoot_RejectsUnknownLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "verbose", "solve", "x = 1", "y = 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported log level")

	_, err = run(t, "--log-level", "debug", "solve", "x = 1", "y = 2")
	assert.NoError(t, err)
}

func TestParse_Text(t *testing.T) {
	out, err := run(t, "parse", "--", "- 2 x + 3 y = 4")
	require.NoError(t, err)
	assert.Equal(t, "a = -2, b = 3, c = 4\n", out)
}

func TestParse_JSON(t *testing.T) {
	out, err := run(t, "parse", "--format", "json", "3y +\n 2x = 7")
	require.NoError(t, err)

	var got parseOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, parseOutput{Normalized: "3y + 2x = 7", A: "2", B: "3", C: "7"}, got)
}

func TestParse_Error(t *testing.T) {
	_, err := run(t, "parse", "x + x = 2")
	var pe *linsolve.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, linsolve.ReasonDuplicateVariable, pe.Reason)
}

func writeBatch(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "systems.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestBatch_AllSolved(t *testing.T) {
	p := writeBatch(t, `
systems:
  - name: first
    equations: ["x + y = 5", "x - y = 1"]
  - name: second
    equations: ["x + 2y = 1", "3x - y = 0"]
    exact: true
`)
	out, err := run(t, "batch", p)
	require.NoError(t, err)
	assert.Equal(t, "first: x = 3, y = 2\nsecond: x = 1/7, y = 3/7\n", out)
}

func TestBatch_ReportsFailures(t *testing.T) {
	p := writeBatch(t, `
systems:
  - name: ok
    equations: ["x + y = 5", "x - y = 1"]
  - name: parallel
    equations: ["x + y = 2", "x + y = 3"]
`)
	out, err := run(t, "batch", "--format", "json", p)
	require.Error(t, err)
	assert.Equal(t, "1 of 2 systems failed", err.Error())

	var lines []batchLine
	require.NoError(t, json.Unmarshal([]byte(out), &lines))
	require.Len(t, lines, 2)
	require.NotNil(t, lines[0].X)
	assert.InDelta(t, 3.0, *lines[0].X, 1e-9)
	assert.Equal(t, "singular", lines[1].Kind)
	assert.Nil(t, lines[1].X)
}

func TestBatch_MissingFile(t *testing.T) {
	_, err := run(t, "batch", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}
