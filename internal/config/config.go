// Package config loads studyrev settings from an optional YAML file, a
// .env file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig selects the storage backend
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ServerConfig holds REST API settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ReminderConfig holds the daily digest settings
type ReminderConfig struct {
	Enabled bool   `yaml:"enabled"`
	At      string `yaml:"at"`
}

// TelegramConfig holds the Telegram notifier credentials
type TelegramConfig struct {
	Token  string `yaml:"token,omitempty"`
	ChatID int64  `yaml:"chat_id,omitempty"`
}

// ClassifierConfig holds label suggestion settings
type ClassifierConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model"`
}

// Config holds studyrev configuration
type Config struct {
	Timezone   string           `yaml:"timezone"`
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Reminder   ReminderConfig   `yaml:"reminder"`
	Telegram   TelegramConfig   `yaml:"telegram,omitempty"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// Home returns the studyrev data directory, respecting STUDYREV_HOME
func Home() string {
	if h := os.Getenv("STUDYREV_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".studyrev")
	}
	return filepath.Join(home, ".studyrev")
}

// DefaultPath is where Load looks when no config path is given
func DefaultPath() string {
	return filepath.Join(Home(), "config.yaml")
}

// Default returns a Config with sensible defaults
func Default() Config {
	return Config{
		Timezone: "Local",
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    filepath.Join(Home(), "studyrev.db"),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Reminder: ReminderConfig{
			Enabled: true,
			At:      "08:00",
		},
		Classifier: ClassifierConfig{
			Model: "claude-sonnet-4-20250514",
		},
	}
}

// Load builds the configuration. A missing file at path is not an error;
// missing fields are filled from defaults. Values from a .env file in the
// working directory and from the environment override the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("invalid config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	if _, err := time.Parse("15:04", cfg.Reminder.At); err != nil {
		return cfg, fmt.Errorf("reminder.at must be HH:MM, got %q", cfg.Reminder.At)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString("STUDYREV_TIMEZONE", &c.Timezone)
	setString("STUDYREV_DB_DRIVER", &c.Database.Driver)
	setString("STUDYREV_DB_DSN", &c.Database.DSN)
	setString("STUDYREV_ADDR", &c.Server.Addr)
	setString("STUDYREV_REMIND_AT", &c.Reminder.At)
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.Token)
	setString("ANTHROPIC_API_KEY", &c.Classifier.APIKey)

	if v := os.Getenv("STUDYREV_REMINDER_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STUDYREV_REMINDER_ENABLED: %w", err)
		}
		c.Reminder.Enabled = enabled
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

// Location resolves the configured time zone
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Save writes the configuration as YAML, creating parent directories
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
