// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
subject:
  profile_path: "./profile.yaml"

visitor:
  name: "Grace"

database:
  driver: "sqlite3"
  path: "./test.db"

answer:
  url: "https://answers.example.com/ask"
  timeout: "10s"

session:
  ttl: "1h"
  max_size: 16

notices:
  duration: "5s"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Subject.ProfilePath != "./profile.yaml" {
		t.Errorf("Subject.ProfilePath = %q, want %q", cfg.Subject.ProfilePath, "./profile.yaml")
	}
	if cfg.Visitor.Name != "Grace" {
		t.Errorf("Visitor.Name = %q, want %q", cfg.Visitor.Name, "Grace")
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "sqlite3")
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Answer.URL != "https://answers.example.com/ask" {
		t.Errorf("Answer.URL = %q, want %q", cfg.Answer.URL, "https://answers.example.com/ask")
	}
	if cfg.Answer.Timeout != 10*time.Second {
		t.Errorf("Answer.Timeout = %v, want %v", cfg.Answer.Timeout, 10*time.Second)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, time.Hour)
	}
	if cfg.Session.MaxSize != 16 {
		t.Errorf("Session.MaxSize = %d, want %d", cfg.Session.MaxSize, 16)
	}
	if cfg.Notices.Duration != 5*time.Second {
		t.Errorf("Notices.Duration = %v, want %v", cfg.Notices.Duration, 5*time.Second)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", `
[subject]
name = "Ada"

[database]
path = "./test.db"

[answer]
timeout = "15s"

[logging]
level = "warn"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Subject.Name != "Ada" {
		t.Errorf("Subject.Name = %q, want %q", cfg.Subject.Name, "Ada")
	}
	if cfg.Answer.Timeout != 15*time.Second {
		t.Errorf("Answer.Timeout = %v, want %v", cfg.Answer.Timeout, 15*time.Second)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	configPath := writeConfig(t, "config.yml", `
subject:
  name: "Ada"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != DefaultDriver {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DefaultDriver)
	}
	wantPath := filepath.Join("/tmp/xdg-data", "askme", "history.db")
	if cfg.Database.Path != wantPath {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, wantPath)
	}
	if cfg.Answer.URL != "" {
		t.Errorf("Answer.URL = %q, want empty", cfg.Answer.URL)
	}
	if cfg.Answer.Timeout != DefaultAnswerTimeout {
		t.Errorf("Answer.Timeout = %v, want %v", cfg.Answer.Timeout, DefaultAnswerTimeout)
	}
	if cfg.Session.TTL != DefaultSessionTTL {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, DefaultSessionTTL)
	}
	if cfg.Session.MaxSize != DefaultSessionMaxSize {
		t.Errorf("Session.MaxSize = %d, want %d", cfg.Session.MaxSize, DefaultSessionMaxSize)
	}
	if cfg.Notices.Duration != DefaultNoticeDuration {
		t.Errorf("Notices.Duration = %v, want %v", cfg.Notices.Duration, DefaultNoticeDuration)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want info/text", cfg.Logging)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_ASKME_ANSWER_URL", "https://from-env.example.com")
	t.Setenv("TEST_ASKME_SUBJECT", "Ada")

	configPath := writeConfig(t, "config.yaml", `
subject:
  name: "${TEST_ASKME_SUBJECT}"
database:
  path: "./test.db"
answer:
  url: "${TEST_ASKME_ANSWER_URL}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Answer.URL != "https://from-env.example.com" {
		t.Errorf("Answer.URL = %q, want %q", cfg.Answer.URL, "https://from-env.example.com")
	}
	if cfg.Subject.Name != "Ada" {
		t.Errorf("Subject.Name = %q, want %q", cfg.Subject.Name, "Ada")
	}
}

func TestLoad_EnvVarExpansion_UnsetVar(t *testing.T) {
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	configPath := writeConfig(t, "config.yaml", `
subject:
  name: "Ada"
visitor:
  name: "${UNSET_VAR_FOR_TEST}"
database:
  path: "./test.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Unset env vars should expand to empty string
	if cfg.Visitor.Name != "" {
		t.Errorf("Visitor.Name = %q, want empty string for unset env var", cfg.Visitor.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", "subject: [unclosed")

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("error = %v, want parsing config file", err)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", "[subject\nname = ")

	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() expected error for invalid TOML")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	tests := []struct {
		name    string
		section string
		wantErr string
	}{
		{"answer timeout", "answer:\n  timeout: \"soon\"", "answer.timeout"},
		{"session ttl", "session:\n  ttl: \"forever\"", "session.ttl"},
		{"notice duration", "notices:\n  duration: \"3\"", "notices.duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, "config.yaml", "subject:\n  name: Ada\n"+tt.section+"\n")

			_, err := Load(configPath)
			if err == nil {
				t.Fatal("Load() expected error for invalid duration")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Subject.Name = "Ada"
		cfg.Database.Path = "./test.db"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"profile path only", func(c *Config) { c.Subject.Name = ""; c.Subject.ProfilePath = "p.yaml" }, ""},
		{"no subject", func(c *Config) { c.Subject.Name = "  " }, "subject"},
		{"bad driver", func(c *Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"no database path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"bad url scheme", func(c *Config) { c.Answer.URL = "ftp://answers" }, "answer.url"},
		{"negative timeout", func(c *Config) { c.Answer.Timeout = -time.Second }, "answer.timeout"},
		{"negative ttl", func(c *Config) { c.Session.TTL = -time.Second }, "session.ttl"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("ASKME_CONFIG", "/etc/askme.toml")
	if got := DefaultPath(); got != "/etc/askme.toml" {
		t.Errorf("DefaultPath() = %q, want %q", got, "/etc/askme.toml")
	}

	t.Setenv("ASKME_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	want := filepath.Join("/tmp/xdg-config", "askme", "config.yaml")
	if got := DefaultPath(); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR}", "value"},
		{"prefix-${TEST_VAR}-suffix", "prefix-value-suffix"},
		{"no vars here", "no vars here"},
		{"${NONEXISTENT_VAR_FOR_TEST}", ""},
		{"$TEST_VAR", "$TEST_VAR"},
	}

	for _, tt := range tests {
		if got := expandEnvVars(tt.input); got != tt.expected {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRead_SkipsValidation(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", "database:\n  path: \"./test.db\"\n")

	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() expected error without a subject")
	}

	cfg, err := Read(configPath)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	cfg.Subject.Name = "Ada"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after override error = %v", err)
	}
}
