package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

// DevSecret signs sessions when nothing else is configured. It is public,
// so shared (postgres) stores refuse it.
const DevSecret = "taskdesk-dev-secret"

type DatabaseConfig struct {
	Driver        string `yaml:"driver"`
	DSN           string `yaml:"url"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

type SessionConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
	File   string        `yaml:"file"`
}

type ReportsConfig struct {
	Dir      string `yaml:"dir"`
	FontPath string `yaml:"font_path"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Reports  ReportsConfig  `yaml:"reports"`
}

func defaults() Config {
	sessionFile := filepath.Join(".taskdesk", "session")
	if home, err := os.UserHomeDir(); err == nil {
		sessionFile = filepath.Join(home, ".taskdesk", "session")
	}
	return Config{
		Database: DatabaseConfig{Driver: "sqlite", DSN: "taskdesk.db", BusyTimeoutMS: 5000},
		Session: SessionConfig{
			Secret: DevSecret,
			TTL:    12 * time.Hour,
			File:   sessionFile,
		},
		Reports: ReportsConfig{Dir: "./reports"},
	}
}

// Load reads the yaml file at path (a missing file leaves defaults), then
// .env and the TASKDESK_* environment variables, which win over the file.
func Load(path string) (*Config, error) {
	cfg := defaults()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Database.Driver, "TASKDESK_DB_DRIVER")
	setString(&cfg.Database.DSN, "TASKDESK_DB_URL")
	setString(&cfg.Session.Secret, "TASKDESK_SESSION_SECRET")
	setString(&cfg.Session.File, "TASKDESK_SESSION_FILE")
	setString(&cfg.Reports.Dir, "TASKDESK_REPORTS_DIR")
	setString(&cfg.Reports.FontPath, "TASKDESK_REPORTS_FONT")

	if v := os.Getenv("TASKDESK_DB_BUSY_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TASKDESK_DB_BUSY_TIMEOUT_MS: %w", err)
		}
		cfg.Database.BusyTimeoutMS = n
	}
	if v := os.Getenv("TASKDESK_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TASKDESK_SESSION_TTL: %w", err)
		}
		cfg.Session.TTL = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.url is required")
	}
	if c.Session.Secret == "" {
		return errors.New("session.secret is required")
	}
	if c.Database.Driver == "postgres" && c.Session.Secret == DevSecret {
		return errors.New("session.secret must be set for a postgres store (TASKDESK_SESSION_SECRET)")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	return nil
}
