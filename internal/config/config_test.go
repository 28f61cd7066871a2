package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linker/internal/config"
)

func writeCredentials(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	credsPath := writeCredentials(t, `{
		"db_user": "wikilinker",
		"db_password": "secret",
		"db_host": "localhost:3306",
		"db_name": "catalogs",
		"wikidata_api_user": "bot",
		"wikidata_api_password": "botpass"
	}`)

	cfg, err := config.Load(credsPath, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Credentials.DBEngine)
	assert.Equal(t, "wikilinker", cfg.Credentials.DBUser)
	assert.Equal(t, "localhost:3306", cfg.Credentials.DBHost)
	assert.Equal(t, "bot", cfg.Credentials.WikidataUser)
}

func TestLoadEnvOverride(t *testing.T) {
	credsPath := writeCredentials(t, `{"db_user": "wikilinker", "db_password": "secret"}`)

	t.Setenv("LINKER_DB_PASSWORD", "from-env")

	cfg, err := config.Load(credsPath, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Credentials.DBPassword)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.json"), t.TempDir())
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	credsPath := writeCredentials(t, `{not json`)

	_, err := config.Load(credsPath, t.TempDir())
	require.Error(t, err)
}

func TestEnsureLayout(t *testing.T) {
	sharedDir := t.TempDir()
	credsPath := writeCredentials(t, `{}`)

	cfg, err := config.Load(credsPath, sharedDir)
	require.NoError(t, err)

	require.NoError(t, cfg.EnsureLayout([]string{"wikidata", "results"}))
	for _, folder := range []string{"wikidata", "results"} {
		info, err := os.Stat(filepath.Join(sharedDir, folder))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
