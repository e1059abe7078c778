package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnvKeepsProcessEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CALC_DOTENV_NEW=from-file\nCALC_DOTENV_SET=from-file\n"), 0o600))

	t.Setenv("CALC_DOTENV_SET", "from-env")
	t.Setenv("CALC_DOTENV_NEW", "")
	require.NoError(t, os.Unsetenv("CALC_DOTENV_NEW"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("CALC_DOTENV_NEW"))
	assert.Equal(t, "from-env", os.Getenv("CALC_DOTENV_SET"))
}

func TestLoadDotEnvSkipsMissingFiles(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadDotEnvRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BAD-KEY=1\n"), 0o600))

	assert.Error(t, LoadDotEnv(path))
}
