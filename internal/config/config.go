// ABOUTME: Configuration loading and parsing for askme
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Defaults applied to unset fields.
const (
	DefaultDriver         = "sqlite"
	DefaultAnswerTimeout  = 30 * time.Second
	DefaultSessionTTL     = 24 * time.Hour
	DefaultSessionMaxSize = 128
	DefaultNoticeDuration = 3 * time.Second
)

// Config represents the complete askme configuration
type Config struct {
	Subject  SubjectConfig  `yaml:"subject" toml:"subject"`
	Visitor  VisitorConfig  `yaml:"visitor" toml:"visitor"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Answer   AnswerConfig   `yaml:"answer" toml:"answer"`
	Session  SessionConfig  `yaml:"session" toml:"session"`
	Notices  NoticesConfig  `yaml:"notices" toml:"notices"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// SubjectConfig identifies whose profile the assistant answers for.
// ProfilePath wins over Name when both are set.
type SubjectConfig struct {
	ProfilePath string `yaml:"profile_path" toml:"profile_path"`
	Name        string `yaml:"name" toml:"name"`
}

// VisitorConfig holds the externally supplied visitor name, if any
type VisitorConfig struct {
	Name string `yaml:"name" toml:"name"`
}

// DatabaseConfig holds transcript storage configuration
type DatabaseConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // sqlite (pure Go) or sqlite3 (cgo)
	Path   string `yaml:"path" toml:"path"`
}

// AnswerConfig holds answer service configuration. An empty URL selects the
// built-in profile echo service.
type AnswerConfig struct {
	URL     string        `yaml:"url" toml:"url"`
	Timeout time.Duration `yaml:"-" toml:"-"`

	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// SessionConfig holds session memory configuration
type SessionConfig struct {
	TTL     time.Duration `yaml:"-" toml:"-"`
	MaxSize int           `yaml:"max_size" toml:"max_size"`

	TTLRaw string `yaml:"ttl" toml:"ttl"`
}

// NoticesConfig holds transient notice configuration
type NoticesConfig struct {
	Duration time.Duration `yaml:"-" toml:"-"`

	DurationRaw string `yaml:"duration" toml:"duration"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a configuration with every default applied and no subject.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed,
// validated Config.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Read parses a configuration file and applies defaults without validating,
// so callers can apply overrides first.
// The format is chosen by extension: .toml for TOML, anything else for YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expanded := expandEnvVars(string(data))

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// DefaultPath returns the config file location: $ASKME_CONFIG if set,
// otherwise askme/config.yaml under the XDG config directory.
func DefaultPath() string {
	if p := os.Getenv("ASKME_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "askme", "config.yaml")
}

// DefaultDataPath returns the default transcript database location.
func DefaultDataPath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "askme", "history.db")
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fallback
	}
	return filepath.Join(home, fallback)
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDataPath()
	}
	if c.Answer.Timeout == 0 {
		c.Answer.Timeout = DefaultAnswerTimeout
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = DefaultSessionTTL
	}
	if c.Session.MaxSize == 0 {
		c.Session.MaxSize = DefaultSessionMaxSize
	}
	if c.Notices.Duration == 0 {
		c.Notices.Duration = DefaultNoticeDuration
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Subject.ProfilePath == "" && strings.TrimSpace(c.Subject.Name) == "" {
		return fmt.Errorf("subject.profile_path or subject.name is required")
	}

	switch c.Database.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("database.driver must be sqlite or sqlite3, got %q", c.Database.Driver)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Answer.URL != "" {
		u, err := url.Parse(c.Answer.URL)
		if err != nil {
			return fmt.Errorf("answer.url is not a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("answer.url must use http or https scheme")
		}
	}

	if c.Answer.Timeout < 0 {
		return fmt.Errorf("answer.timeout must be positive")
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Session.MaxSize < 0 {
		return fmt.Errorf("session.max_size must be positive")
	}
	if c.Notices.Duration < 0 {
		return fmt.Errorf("notices.duration must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Answer.TimeoutRaw != "" {
		cfg.Answer.Timeout, err = time.ParseDuration(cfg.Answer.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing answer.timeout %q: %w", cfg.Answer.TimeoutRaw, err)
		}
	}

	if cfg.Session.TTLRaw != "" {
		cfg.Session.TTL, err = time.ParseDuration(cfg.Session.TTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session.ttl %q: %w", cfg.Session.TTLRaw, err)
		}
	}

	if cfg.Notices.DurationRaw != "" {
		cfg.Notices.Duration, err = time.ParseDuration(cfg.Notices.DurationRaw)
		if err != nil {
			return fmt.Errorf("parsing notices.duration %q: %w", cfg.Notices.DurationRaw, err)
		}
	}

	return nil
}
