package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "dupetree.yaml"

const (
	OnErrorSkip  = "skip"
	OnErrorAbort = "abort"

	FormatText = "text"
	FormatJSON = "json"
)

type LogConfig struct {
	Filename   string `yaml:"filename"`
	Level      string `yaml:"level"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

type Config struct {
	Exclude   []string  `yaml:"exclude"`
	Algorithm string    `yaml:"algorithm"`
	OnError   string    `yaml:"on_error"`
	Format    string    `yaml:"format"`
	Output    string    `yaml:"output"`
	Log       LogConfig `yaml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Exclude: []string{
			".git/",
			".svn/",
			".hg/",
			"node_modules/",
			"__pycache__/",
			".DS_Store",
			"Thumbs.db",
		},
		Algorithm: "sha256",
		OnError:   OnErrorSkip,
		Format:    FormatText,
		Log:       defaultLog(),
	}
}

func defaultLog() LogConfig {
	return LogConfig{
		Level:      "warn",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// LoadConfig reads the YAML file at path. A missing file yields
// DefaultConfig; keys absent from an existing file keep their defaults,
// except exclude which is taken as written.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Exclude = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	// Initialize Exclude slice if nil (for empty configs)
	if cfg.Exclude == nil {
		cfg.Exclude = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate normalizes enumerated values and rejects unknown ones.
func (c *Config) Validate() error {
	c.OnError = strings.ToLower(strings.TrimSpace(c.OnError))
	switch c.OnError {
	case "":
		c.OnError = OnErrorSkip
	case OnErrorSkip, OnErrorAbort:
	default:
		return fmt.Errorf("invalid on_error %q: want %q or %q", c.OnError, OnErrorSkip, OnErrorAbort)
	}

	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case "":
		c.Format = FormatText
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q: want %q or %q", c.Format, FormatText, FormatJSON)
	}

	return nil
}
