package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "mindboost/internal/platform/errors"
)

const (
	DefaultServer = "http://localhost:8000"
	fileName      = "config.yaml"

	CredentialStoreSQLite = "sqlite"
	CredentialStoreFile   = "file"
)

type Tracing struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

type Config struct {
	DataDir         string  `yaml:"-"`
	DBPath          string  `yaml:"-"`
	LogPath         string  `yaml:"-"`
	BaseURL         string  `yaml:"server"`
	NotesDir        string  `yaml:"notes_dir"`
	CredentialStore string  `yaml:"credential_store"`
	Debug           bool    `yaml:"debug"`
	Tracing         Tracing `yaml:"tracing"`
}

// Overrides carries values supplied on the command line; empty fields keep
// whatever the config file or defaults set.
type Overrides struct {
	Server string
}

// DefaultDataDir resolves the per-user state directory.
func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "mindboost")
	}
	return ".mindboost"
}

// New builds the configuration rooted at dataDir, reading dataDir/config.yaml
// when it exists. MINDBOOST_SERVER beats the file, overrides beat both.
func New(dataDir string, overrides Overrides) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("%w: data dir is required", apperrors.ErrInvalidInput)
	}
	cfg := Config{
		BaseURL:         DefaultServer,
		NotesDir:        filepath.Join(dataDir, "notes"),
		CredentialStore: CredentialStoreSQLite,
	}
	if err := cfg.readFile(filepath.Join(dataDir, fileName)); err != nil {
		return Config{}, err
	}
	if env := strings.TrimSpace(os.Getenv("MINDBOOST_SERVER")); env != "" {
		cfg.BaseURL = env
	}
	if overrides.Server != "" {
		cfg.BaseURL = overrides.Server
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.DataDir = dataDir
	cfg.DBPath = filepath.Join(dataDir, "mindboost.db")
	cfg.LogPath = filepath.Join(dataDir, "logs", "mindboost.log")
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(payload, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: server %q must be an absolute URL", apperrors.ErrInvalidInput, c.BaseURL)
	}
	switch c.CredentialStore {
	case CredentialStoreSQLite, CredentialStoreFile:
	default:
		return fmt.Errorf("%w: credential_store must be sqlite or file, got %q", apperrors.ErrInvalidInput, c.CredentialStore)
	}
	return nil
}
