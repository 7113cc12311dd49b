package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "features", cfg.Input)
	assert.Equal(t, "score", cfg.Output)
	assert.Equal(t, 20, cfg.Limit)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onnxscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: model.onnx\ninput: pixels\nlimit: 5\n"), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "model.onnx", cfg.Model)
	assert.Equal(t, "pixels", cfg.Input)
	assert.Equal(t, 5, cfg.Limit)
	assert.Equal(t, "score", cfg.Output, "defaults survive for keys the file omits")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onnxscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input: pixels\n"), 0o600))
	t.Setenv("ONNXSCORE_INPUT", "tokens")
	t.Setenv("ONNXSCORE_VECTOR_SIZE", "128")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "tokens", cfg.Input)
	assert.Equal(t, 128, cfg.VectorSize)
}

func TestChangedFlagsWin(t *testing.T) {
	t.Setenv("ONNXSCORE_INPUT", "tokens")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("input", "features", "")
	fs.String("output", "score", "")
	require.NoError(t, fs.Set("input", "embedding"))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "embedding", cfg.Input, "explicitly set flag overrides env")
	assert.Equal(t, "score", cfg.Output, "unchanged flag does not override")
}
