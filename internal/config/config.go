package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is process-level configuration: where the database and log live and
// how the runtime is wired. User-tunable reminder settings live in the
// database instead (internal/storage), so they survive config file resets.
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Log struct {
		Path  string `yaml:"path"`
		Level string `yaml:"level"`
	} `yaml:"log"`

	Notifications struct {
		Desktop bool `yaml:"desktop"`
	} `yaml:"notifications"`

	Scheduler struct {
		Buffer int `yaml:"buffer"`
	} `yaml:"scheduler"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.Notifications.Desktop = true
	cfg.Scheduler.Buffer = 64
	if dir, err := os.UserConfigDir(); err == nil {
		cfg.Database.Path = filepath.Join(dir, "wellnessd", "wellnessd.db")
		cfg.Log.Path = filepath.Join(dir, "wellnessd", "wellnessd.log")
	} else {
		cfg.Database.Path = "wellnessd.db"
		cfg.Log.Path = "wellnessd.log"
	}
	cfg.Log.Level = "info"
	return cfg
}

// Load reads the YAML config at path, falling back to defaults when the file
// does not exist. ${ENV_VAR} placeholders in the file are expanded.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "wellnessd", "config.yaml")
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			data = []byte(os.ExpandEnv(string(data)))
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(cfg)

	if cfg.Database.Path == "" {
		cfg.Database.Path = "wellnessd.db"
	}
	if cfg.Scheduler.Buffer <= 0 {
		cfg.Scheduler.Buffer = 64
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("WELLNESSD_DB_PATH")); v != "" {
		cfg.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("WELLNESSD_LOG_PATH")); v != "" {
		cfg.Log.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("WELLNESSD_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v, ok := getEnvBool("WELLNESSD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.Notifications.Desktop = v
	}
	if v, ok := getEnvInt("WELLNESSD_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.Scheduler.Buffer = v
	}
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
