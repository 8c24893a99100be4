// Package config loads labelsheet settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/teemow/labelsheet/internal/google"
	"github.com/teemow/labelsheet/internal/logging"
)

// Defaults.
const (
	DefaultLabel       = "internships"
	DefaultRange       = "Sheet1!A:C"
	DefaultAccount     = "default"
	DefaultCredentials = "credentials.json"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = logging.FormatText
)

// Environment variables overriding file values.
const (
	EnvLabel         = "LABELSHEET_LABEL"
	EnvSpreadsheetID = "LABELSHEET_SPREADSHEET_ID"
	EnvRange         = "LABELSHEET_RANGE"
	EnvAccount       = "LABELSHEET_ACCOUNT"
	EnvCredentials   = "LABELSHEET_CREDENTIALS_FILE"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
)

// ErrMissingSpreadsheetID is returned by Validate when no destination is set.
var ErrMissingSpreadsheetID = errors.New("spreadsheet_id is required")

// Config is the configuration of one export.
type Config struct {
	LabelName       string `yaml:"label_name"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	Range           string `yaml:"range"`
	Account         string `yaml:"account"`
	CredentialsFile string `yaml:"credentials_file"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
}

// Default returns a Config holding only defaults.
func Default() *Config {
	return &Config{
		LabelName:       DefaultLabel,
		Range:           DefaultRange,
		Account:         DefaultAccount,
		CredentialsFile: DefaultCredentials,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
	}
}

// DefaultPath is <user config dir>/labelsheet/config.yaml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "labelsheet", "config.yaml")
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment, in that order of precedence. An empty path reads DefaultPath
// if that file exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LabelName = getEnvOrDefault(EnvLabel, c.LabelName)
	c.SpreadsheetID = getEnvOrDefault(EnvSpreadsheetID, c.SpreadsheetID)
	c.Range = getEnvOrDefault(EnvRange, c.Range)
	c.Account = getEnvOrDefault(EnvAccount, c.Account)
	c.CredentialsFile = getEnvOrDefault(EnvCredentials, c.CredentialsFile)
	c.LogLevel = getEnvOrDefault(EnvLogLevel, c.LogLevel)
	c.LogFormat = getEnvOrDefault(EnvLogFormat, c.LogFormat)
}

// Validate checks the configuration. The spreadsheet id may be empty when
// nothing will be written.
func (c *Config) Validate(requireSpreadsheet bool) error {
	if strings.TrimSpace(c.LabelName) == "" {
		return fmt.Errorf("label_name is required")
	}
	if strings.TrimSpace(c.Range) == "" {
		return fmt.Errorf("range is required")
	}
	if requireSpreadsheet && strings.TrimSpace(c.SpreadsheetID) == "" {
		return ErrMissingSpreadsheetID
	}
	if err := google.ValidateAccountName(c.Account); err != nil {
		return err
	}
	if c.CredentialsFile == "" {
		return fmt.Errorf("credentials_file is required")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
