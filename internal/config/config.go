// Package config loads the launcher configuration: the credentials JSON
// file and the shared data directory layout.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Defaults match the dockerized deployment.
const (
	DefaultSharedDir       = "/app/shared"
	DefaultCredentialsPath = "/app/shared/credentials.json"
)

// Credentials holds the database and Wikidata accounts of a run.
type Credentials struct {
	DBEngine   string `json:"db_engine"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBHost     string `json:"db_host"`
	DBName     string `json:"db_name"`

	WikidataUser     string `json:"wikidata_api_user"`
	WikidataPassword string `json:"wikidata_api_password"`
}

// Config is the resolved configuration of one run.
type Config struct {
	SharedDir   string
	Credentials Credentials
}

// Load reads the credentials file and applies environment overrides. A
// .env file next to the working directory is honoured when present.
func Load(credentialsPath, sharedDir string) (*Config, error) {
	// Missing .env is fine, only a malformed one is an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "unable to load .env file")
	}

	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read credentials file %s", credentialsPath)
	}

	cfg := &Config{SharedDir: sharedDir}
	if err := json.Unmarshal(raw, &cfg.Credentials); err != nil {
		return nil, errors.Wrapf(err, "unable to parse credentials file %s", credentialsPath)
	}

	applyEnvOverrides(&cfg.Credentials)

	if cfg.Credentials.DBEngine == "" {
		cfg.Credentials.DBEngine = "mysql"
	}

	return cfg, nil
}

func applyEnvOverrides(creds *Credentials) {
	overrides := map[string]*string{
		"LINKER_DB_ENGINE":         &creds.DBEngine,
		"LINKER_DB_USER":           &creds.DBUser,
		"LINKER_DB_PASSWORD":       &creds.DBPassword,
		"LINKER_DB_HOST":           &creds.DBHost,
		"LINKER_DB_NAME":           &creds.DBName,
		"LINKER_WIKIDATA_USER":     &creds.WikidataUser,
		"LINKER_WIKIDATA_PASSWORD": &creds.WikidataPassword,
	}
	for key, target := range overrides {
		if value, ok := os.LookupEnv(key); ok {
			*target = value
		}
	}
}

// EnsureLayout creates the shared directory subfolders a run writes to.
func (c *Config) EnsureLayout(folders []string) error {
	for _, folder := range folders {
		path := filepath.Join(c.SharedDir, folder)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return errors.Wrapf(err, "unable to create shared folder %s", path)
		}
	}

	return nil
}
