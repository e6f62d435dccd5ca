package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathexis-net/cathexis/internal/config"
)

func TestLoadParams(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	yamlContent := `
k: 2.0
w_pos: [1.0, 0.5]
w_neg: [1.0, 0.5]
decay_beta: [0.9, 0.9]
damping_lambda: 0.5
witness_top_k: 5
base_rate: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	p, err := config.LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.K)
	assert.Equal(t, 5, p.WitnessTopK)
}

func TestLoadParamsRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("k: -1\n"), 0o600))

	_, err := config.LoadParams(path)
	assert.Error(t, err)
}

func TestLoadCategorizer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mlp.yaml")
	yamlContent := `
input_dim: 2
hidden_dim: 2
category_count: 2
w1:
  - [1.0, 0.0]
  - [0.0, 1.0]
b1: [0.0, 0.0]
w2:
  - [1.0, 0.0]
  - [0.0, 1.0]
b2: [0.0, 0.0]
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	mlp, err := config.LoadCategorizer(path)
	require.NoError(t, err)
	assert.Equal(t, 2, mlp.InputDim())
	assert.Equal(t, 2, mlp.CategoryCount())
}
