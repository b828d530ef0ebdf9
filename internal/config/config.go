package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Upload    UploadConfig    `yaml:"upload"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AuthConfig guards the upload and parse routes. An empty APIKey disables
// the check.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// DatabaseConfig points at the optional postgres parse-audit log. When Host
// is empty the server runs without history.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type UploadConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
}

// RateLimitConfig holds per-client request budgets, in requests per minute.
type RateLimitConfig struct {
	UploadPerMinute int `yaml:"upload_per_minute"`
	GPAPerMinute    int `yaml:"gpa_per_minute"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Enabled reports whether a parse-log database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// MaxFileSizeBytes returns the upload size cap in bytes.
func (u UploadConfig) MaxFileSizeBytes() int64 {
	return int64(u.MaxFileSizeMB) * 1024 * 1024
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix GRADEPOINT_ and underscore-separated
// paths:
//
//	GRADEPOINT_SERVER_HOST, GRADEPOINT_SERVER_PORT, GRADEPOINT_API_KEY,
//	GRADEPOINT_DB_HOST, GRADEPOINT_DB_PORT, GRADEPOINT_DB_NAME,
//	GRADEPOINT_DB_USER, GRADEPOINT_DB_PASSWORD, GRADEPOINT_DB_SSLMODE,
//	GRADEPOINT_MAX_FILE_SIZE_MB,
//	GRADEPOINT_RATE_LIMIT_UPLOAD, GRADEPOINT_RATE_LIMIT_GPA
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GRADEPOINT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("GRADEPOINT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GRADEPOINT_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("GRADEPOINT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("GRADEPOINT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("GRADEPOINT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("GRADEPOINT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("GRADEPOINT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("GRADEPOINT_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("GRADEPOINT_MAX_FILE_SIZE_MB"); v != "" {
		if mb, err := strconv.Atoi(v); err == nil {
			cfg.Upload.MaxFileSizeMB = mb
		}
	}
	if v := os.Getenv("GRADEPOINT_RATE_LIMIT_UPLOAD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.UploadPerMinute = n
		}
	}
	if v := os.Getenv("GRADEPOINT_RATE_LIMIT_GPA"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.GPAPerMinute = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Upload.MaxFileSizeMB == 0 {
		cfg.Upload.MaxFileSizeMB = 50
	}
	if cfg.RateLimit.UploadPerMinute == 0 {
		cfg.RateLimit.UploadPerMinute = 10
	}
	if cfg.RateLimit.GPAPerMinute == 0 {
		cfg.RateLimit.GPAPerMinute = 50
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Enabled() {
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required when database.host is set")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required when database.host is set")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required when database.host is set")
		}
	}
	if c.Upload.MaxFileSizeMB < 0 {
		return fmt.Errorf("upload.max_file_size_mb must be non-negative")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
