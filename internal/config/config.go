package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mateai/mate/internal/llm"
)

// Config is the application configuration. Values are layered:
// defaults, then the YAML file, then MATE_* environment variables
// (a .env file in the working directory is loaded first).
type Config struct {
	Mode     string `yaml:"mode"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	DBPath   string `yaml:"db_path"`

	API      APIConfig      `yaml:"api"`
	Tutor    TutorConfig    `yaml:"tutor"`
	Server   ServerConfig   `yaml:"server"`
	Practice PracticeConfig `yaml:"practice"`
	Release  ReleaseConfig  `yaml:"release"`

	// LLM is read from the environment only so provider keys never end
	// up in a config file that might be shared.
	LLM llm.Config `yaml:"-"`
}

// APIConfig points at the Mate AI REST backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// TutorConfig selects where AI calls run. An empty RemoteURL means the
// local process talks to the LLM provider directly.
type TutorConfig struct {
	RemoteURL string `yaml:"remote_url"`
}

// ServerConfig configures `mate serve`.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	EventRetention time.Duration `yaml:"event_retention"`
}

// PracticeConfig holds the session controller limits.
type PracticeConfig struct {
	MaxAttempts         int `yaml:"max_attempts"`
	AssignedMaxAttempts int `yaml:"assigned_max_attempts"`
	HintSlots           int `yaml:"hint_slots"`
	DefaultCount        int `yaml:"default_count"`
}

// ReleaseConfig names the GitHub repository used for version checks.
type ReleaseConfig struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mode:     "dev",
		LogLevel: "info",
		API: APIConfig{
			BaseURL: "http://localhost:3000/api",
			Timeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			EventRetention: 30 * 24 * time.Hour,
		},
		Practice: PracticeConfig{
			MaxAttempts:         3,
			AssignedMaxAttempts: 0,
			HintSlots:           1,
			DefaultCount:        5,
		},
		Release: ReleaseConfig{
			Owner: "mateai",
			Repo:  "mate",
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load builds the configuration. path may be empty, in which case
// MATE_CONFIG and then the default config location are tried; a missing
// file is not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv("MATE_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		if dir, err := Dir(); err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.LLM = llm.ConfigFromEnv()
	if _, ok := os.LookupEnv("MATE_LLM_PROVIDER"); !ok {
		if discovered, found := llm.DiscoverConfig(); found {
			cfg.LLM = discovered
		}
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Mode, "MATE_MODE")
	setString(&cfg.LogLevel, "MATE_LOG_LEVEL")
	setString(&cfg.LogFile, "MATE_LOG_FILE")
	setString(&cfg.DBPath, "MATE_DB")
	setString(&cfg.API.BaseURL, "MATE_API_URL")
	setString(&cfg.Tutor.RemoteURL, "MATE_TUTOR_URL")
	setString(&cfg.Server.Addr, "MATE_SERVER_ADDR")
	setString(&cfg.Server.JWTSecret, "MATE_JWT_SECRET")
	setString(&cfg.Release.Owner, "MATE_RELEASE_OWNER")
	setString(&cfg.Release.Repo, "MATE_RELEASE_REPO")

	if v := os.Getenv("MATE_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}

	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"MATE_API_TIMEOUT", &cfg.API.Timeout},
		{"MATE_LLM_EVENT_RETENTION", &cfg.Server.EventRetention},
	} {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", d.key, err)
			}
			*d.dst = parsed
		}
	}

	for _, n := range []struct {
		key string
		dst *int
	}{
		{"MATE_MAX_ATTEMPTS", &cfg.Practice.MaxAttempts},
		{"MATE_ASSIGNED_MAX_ATTEMPTS", &cfg.Practice.AssignedMaxAttempts},
		{"MATE_HINT_SLOTS", &cfg.Practice.HintSlots},
		{"MATE_DEFAULT_COUNT", &cfg.Practice.DefaultCount},
	} {
		if v := os.Getenv(n.key); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 0 {
				return fmt.Errorf("%s: expected a non-negative integer, got %q", n.key, v)
			}
			*n.dst = parsed
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Dir resolves the configuration directory:
// $XDG_CONFIG_HOME/mate or ~/.config/mate.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "mate"), nil
}

// SessionPath is where the gateway session (token and profile) is kept.
func SessionPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}
