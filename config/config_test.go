package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "api.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigMissing)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeConfig(t, "{not json")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrConfigMalformed)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	path := writeConfig(t, `{"model": "gemini-2.5-flash"}`)
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrConfigMalformed)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `{"api_key": "secret"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.NotEmpty(t, cfg.ContextFacts)
}

func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `{"api_key": "secret", "model": "gemini-2.5-pro", "context_facts": ["小詠是宿舍"]}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, []string{"小詠是宿舍"}, cfg.ContextFacts)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `{"api_key": "from-file", "model": "gemini-2.5-flash"}`)
	t.Setenv(envAPIKey, "from-env")
	t.Setenv(envModel, "gemini-2.5-pro")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
}

func TestLoad_VaderNeedsNoKey(t *testing.T) {
	path := writeConfig(t, `{"model": "vader"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModelVader, cfg.Model)
}
