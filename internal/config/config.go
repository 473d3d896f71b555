// Package config loads the server configuration (YAML) and the API
// credentials (JSON, kept in a separate file so it can be mounted as a
// secret).
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config is the YAML server configuration. Zero fields fall back to the
// defaults below.
type Config struct {
	Listen             string   `yaml:"listen"`
	BaseURL            string   `yaml:"base_url"`
	AuthURL            string   `yaml:"auth_url"`
	ChunkSize          int      `yaml:"chunk_size"`
	InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
	UploadDir          string   `yaml:"upload_dir"` // debug copies of converted data; empty disables
	CredentialsFile    string   `yaml:"credentials_file"`
	RequiredColumns    []string `yaml:"required_columns"` // nil keeps the format default
	Language           string   `yaml:"language"`         // issue message language, "en" or "de"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:          ":8080",
		ChunkSize:       100,
		CredentialsFile: "credentials.json",
		Language:        "en",
	}
}

// Load reads the YAML file at path over the defaults. A missing file is an
// error: running against the wrong API because a config went unread is worse
// than failing fast.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.BaseURL == "" || cfg.AuthURL == "" {
		return cfg, fmt.Errorf("config: base_url and auth_url must be set")
	}
	return cfg, nil
}

// Credentials hold the OAuth client for the partner API.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// LoadCredentials reads the JSON credentials file.
func LoadCredentials(path string) (Credentials, error) {
	var creds Credentials
	data, err := os.ReadFile(path)
	if err != nil {
		return creds, fmt.Errorf("credentials: %w", err)
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("credentials: parse %s: %w", path, err)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return creds, fmt.Errorf("credentials: client_id and client_secret must be set")
	}
	return creds, nil
}
