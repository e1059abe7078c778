package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/solver"
)

func fakeDeps(s solver.Solver) deps {
	return deps{
		loadConfig: func(string) (config.Config, error) { return config.Default(), nil },
		newSolver:  func(config.AI) (solver.Solver, error) { return s, nil },
	}
}

func run(t *testing.T, d deps, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(d)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestKeysCommand(t *testing.T) {
	out, err := run(t, defaultDeps(), "keys", "2+3*4{Enter}")
	require.NoError(t, err)
	assert.Equal(t, "20\n\nhistory:\n  5 * 4 = 20\n  2 + 3 = 5\n", out)
}

func TestKeysCommandJSON(t *testing.T) {
	out, err := run(t, defaultDeps(), "keys", "--json", "7", "/", "0", "=")
	require.NoError(t, err)

	var snap calculator.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, calculator.ErrorDisplay, snap.Display)
	assert.Nil(t, snap.Operator)
	assert.Empty(t, snap.History)
}

func TestKeysCommandRejectsBadScript(t *testing.T) {
	_, err := run(t, defaultDeps(), "keys", "1+{Tab}")
	assert.Error(t, err)
}

func TestSolveCommand(t *testing.T) {
	var got string
	s := solver.Func(func(_ context.Context, prompt string) (solver.Solution, error) {
		got = prompt
		return solver.Solution{Result: "12.6", Explanation: "15% of 84 is 12.6."}, nil
	})

	out, err := run(t, fakeDeps(s), "solve", "15%", "of", "84")
	require.NoError(t, err)
	assert.Equal(t, "15% of 84", got)
	assert.Equal(t, "12.6\n\n15% of 84 is 12.6.\n\nhistory:\n  \"15% of 84\" → 12.6\n", out)
}

func TestSolveCommandFailure(t *testing.T) {
	s := solver.Func(func(context.Context, string) (solver.Solution, error) {
		return solver.Solution{}, errors.New("upstream unavailable")
	})

	out, err := run(t, fakeDeps(s), "solve", "what is love")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unavailable")
	assert.Equal(t, calculator.ErrorDisplay+"\n", out)
}

func TestSolveCommandWithoutAPIKey(t *testing.T) {
	d := defaultDeps()
	d.loadConfig = func(string) (config.Config, error) { return config.Default(), nil }

	_, err := run(t, d, "solve", "1+1")
	assert.ErrorIs(t, err, solver.ErrNotConfigured)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, defaultDeps(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "calc version dev")
}
