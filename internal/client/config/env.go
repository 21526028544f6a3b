package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvAPIBaseURL     = "RMC_API_URL"
	EnvDatabasePath   = "RMC_DB_PATH"
	EnvRequestTimeout = "RMC_REQUEST_TIMEOUT"
	EnvSearchDebounce = "RMC_SEARCH_DEBOUNCE"
	EnvLocale         = "RMC_LOCALE"
	EnvLogLevel       = "RMC_LOG_LEVEL"
	EnvNoColor        = "RMC_NO_COLOR"
	EnvListenAddr     = "RMC_LISTEN_ADDR"
	EnvAllowedOrigins = "RMC_ALLOWED_ORIGINS"
	EnvS3Endpoint     = "RMC_S3_ENDPOINT"
	EnvS3Region       = "RMC_S3_REGION"
	EnvS3Bucket       = "RMC_S3_BUCKET"
	EnvS3Prefix       = "RMC_S3_PREFIX"
	EnvS3AccessKey    = "RMC_S3_ACCESS_KEY"
	EnvS3SecretKey    = "RMC_S3_SECRET_KEY"
)

type lookupFunc func(key string) (string, bool)

var lookupEnv lookupFunc = os.LookupEnv

// loadDotEnv exports the variables in path into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// parseEnv overlays cfg with RMC_* variables. The conventional NO_COLOR
// variable also disables colour when set to anything.
func parseEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str(EnvAPIBaseURL, &cfg.APIBaseURL)
	str(EnvDatabasePath, &cfg.DatabasePath)
	str(EnvLocale, &cfg.Locale)
	str(EnvLogLevel, &cfg.LogLevel)
	str(EnvListenAddr, &cfg.ListenAddr)
	str(EnvS3Endpoint, &cfg.S3.Endpoint)
	str(EnvS3Region, &cfg.S3.Region)
	str(EnvS3Bucket, &cfg.S3.Bucket)
	str(EnvS3Prefix, &cfg.S3.Prefix)
	str(EnvS3AccessKey, &cfg.S3.AccessKey)
	str(EnvS3SecretKey, &cfg.S3.SecretKey)

	if err := dur(EnvRequestTimeout, &cfg.RequestTimeout); err != nil {
		return err
	}
	if err := dur(EnvSearchDebounce, &cfg.SearchDebounce); err != nil {
		return err
	}

	if v, ok := lookup(EnvAllowedOrigins); ok && v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	if v, ok := lookup(EnvNoColor); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvNoColor, err)
		}
		cfg.NoColor = b
	}
	if v, ok := lookup("NO_COLOR"); ok && v != "" {
		cfg.NoColor = true
	}

	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
