package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/rmcatalog/internal/flagx"
	"github.com/dmitrijs2005/rmcatalog/internal/timex"
	"gopkg.in/yaml.v3"
)

type s3File struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	Region    string `json:"region" yaml:"region"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	Prefix    string `json:"prefix" yaml:"prefix"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
}

// fileConfig is the on-disk shape shared by JSON and YAML. Durations go
// through timex.Duration so both "300ms" and integer nanoseconds work.
type fileConfig struct {
	APIBaseURL     string         `json:"api_base_url" yaml:"api_base_url"`
	DatabasePath   string         `json:"database_path" yaml:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SearchDebounce timex.Duration `json:"search_debounce" yaml:"search_debounce"`
	Locale         string         `json:"locale" yaml:"locale"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
	NoColor        bool           `json:"no_color" yaml:"no_color"`
	ListenAddr     string         `json:"listen_addr" yaml:"listen_addr"`
	AllowedOrigins []string       `json:"allowed_origins" yaml:"allowed_origins"`
	S3             s3File         `json:"s3" yaml:"s3"`
}

func toFile(c *Config) fileConfig {
	return fileConfig{
		APIBaseURL:     c.APIBaseURL,
		DatabasePath:   c.DatabasePath,
		RequestTimeout: timex.Duration{Duration: c.RequestTimeout},
		SearchDebounce: timex.Duration{Duration: c.SearchDebounce},
		Locale:         c.Locale,
		LogLevel:       c.LogLevel,
		NoColor:        c.NoColor,
		ListenAddr:     c.ListenAddr,
		AllowedOrigins: c.AllowedOrigins,
		S3:             s3File(c.S3),
	}
}

func (f fileConfig) apply(c *Config) {
	c.APIBaseURL = f.APIBaseURL
	c.DatabasePath = f.DatabasePath
	c.RequestTimeout = f.RequestTimeout.Duration
	c.SearchDebounce = f.SearchDebounce.Duration
	c.Locale = f.Locale
	c.LogLevel = f.LogLevel
	c.NoColor = f.NoColor
	c.ListenAddr = f.ListenAddr
	c.AllowedOrigins = f.AllowedOrigins
	c.S3 = S3(f.S3)
}

// parseFile overlays cfg with the file named by -c/--config, if any.
// Keys missing from the file keep their current values. Files ending in
// .yaml or .yml are read as YAML, everything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fc := toFile(cfg)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}
