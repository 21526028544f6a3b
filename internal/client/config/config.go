package config

import (
	"errors"
	"fmt"
	"time"
)

// S3 holds the backup bucket settings. Endpoint is optional and points the
// client at an S3-compatible service (MinIO, R2, ...).
type S3 struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
}

// Config holds runtime settings for the rmcatalog CLI.
type Config struct {
	APIBaseURL     string
	DatabasePath   string
	RequestTimeout time.Duration
	SearchDebounce time.Duration
	Locale         string
	LogLevel       string
	NoColor        bool
	ListenAddr     string
	AllowedOrigins []string
	S3             S3
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://rickandmortyapi.com/api"
	c.DatabasePath = "rmcatalog.db"
	c.RequestTimeout = 10 * time.Second
	c.SearchDebounce = 300 * time.Millisecond
	c.Locale = "en"
	c.LogLevel = "info"
	c.NoColor = false
	c.ListenAddr = "127.0.0.1:8080"
	c.AllowedOrigins = []string{"http://localhost:4200"}
	c.S3 = S3{Region: "us-east-1", Prefix: "rmcatalog"}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("api base URL is empty"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.SearchDebounce < 0 {
		errs = append(errs, fmt.Errorf("search debounce must not be negative, got %s", c.SearchDebounce))
	}
	if c.Locale != "en" && c.Locale != "pt" {
		errs = append(errs, fmt.Errorf("unsupported locale %q (want en or pt)", c.Locale))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from defaults, then the config file named by
// -c/--config in args, then the environment (including a .env file), then the
// flags in args. Later sources take precedence over earlier ones.
//
// args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookupEnv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
