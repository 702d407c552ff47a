package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

const tridiag3 = `%%MatrixMarket matrix coordinate real general
3 3 7
1 1 4.0
1 2 1.0
2 1 1.0
2 2 4.0
2 3 1.0
3 2 1.0
3 3 4.0
`

func TestSolveCommand(t *testing.T) {
	path := writeTemp(t, "a.mtx", tridiag3)

	cmd := newRootCommand()
	cmd.SetArgs([]string{"solve", "--repeat", "2", path})
	require.NoError(t, cmd.Execute())
}

func TestSolveCommand_RejectsRectangular(t *testing.T) {
	path := writeTemp(t, "rect.mtx", "%%MatrixMarket matrix coordinate real general\n2 3 1\n1 1 1.0\n")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"solve", path})
	require.Error(t, cmd.Execute())
}

func TestInfoCommand(t *testing.T) {
	path := writeTemp(t, "a.mtx", tridiag3)

	cmd := newRootCommand()
	cmd.SetArgs([]string{"info", path})
	require.NoError(t, cmd.Execute())
}

func TestConfigOptions(t *testing.T) {
	path := writeTemp(t, "solver.yaml", "pivot_tolerance: 0.5\nscaling: sum\nordering: natural\nbtf: false\nhalt_if_singular: false\ngrowth_threshold: 0.01\n")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	opts, err := cfg.options()
	require.NoError(t, err)
	assert.Len(t, opts, 6)
}

func TestConfigOptions_PartialFileKeepsDefaults(t *testing.T) {
	path := writeTemp(t, "solver.yaml", "scaling: none\n")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	opts, err := cfg.options()
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

func TestConfigOptions_RejectsUnknownScaling(t *testing.T) {
	cfg := &config{Scaling: "geometric"}
	_, err := cfg.options()
	assert.ErrorContains(t, err, "unknown scaling")
}

func TestConfigOptions_RejectsUnknownOrdering(t *testing.T) {
	cfg := &config{Ordering: "colamd"}
	_, err := cfg.options()
	assert.ErrorContains(t, err, "unknown ordering")
}

func TestSolveCommand_WithConfig(t *testing.T) {
	mtxPath := writeTemp(t, "a.mtx", tridiag3)
	cfgPath := writeTemp(t, "solver.yaml", "scaling: none\nbtf: false\n")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", cfgPath, "solve", mtxPath})
	require.NoError(t, cmd.Execute())
}
