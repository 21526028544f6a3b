// Package config loads runtime configuration for the rmcatalog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected with -c or --config.
//  3. Environment: a .env file in the working directory, then RMC_* variables.
//  4. Command-line flags, which override earlier values.
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "300ms" or
// integer nanoseconds:
//
//	api_base_url: https://rickandmortyapi.com/api
//	database_path: /var/lib/rmcatalog/catalog.db
//	request_timeout: 10s
//	search_debounce: 300ms
//	locale: pt
//	s3:
//	  bucket: backups
//	  endpoint: http://localhost:9000
//
// The same keys are accepted in JSON.
package config
