package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `
base_url: https://partners.example.com/companies/test/v6/
auth_url: https://auth.example.com/token
chunk_size: 50
language: de
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 50, cfg.ChunkSize)
	require.Equal(t, ":8080", cfg.Listen) // default survives overlay
	require.Equal(t, "de", cfg.Language)
}

func TestLoad_MissingURLs(t *testing.T) {
	path := writeFile(t, "config.yaml", "listen: :9999\n")
	_, err := Load(path)
	require.ErrorContains(t, err, "base_url")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadCredentials(t *testing.T) {
	path := writeFile(t, "credentials.json", `{"client_id":"id","client_secret":"secret"}`)
	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	require.Equal(t, "id", creds.ClientID)

	empty := writeFile(t, "empty.json", `{}`)
	_, err = LoadCredentials(empty)
	require.ErrorContains(t, err, "client_id")
}
