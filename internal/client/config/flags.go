package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/rmcatalog/internal/flagx"
)

// flagNames are the value flags parseFlags understands, long form first.
// Each is accepted with one or two leading dashes.
var flagNames = [][]string{
	{"api", "a"},
	{"db", "d"},
	{"timeout"},
	{"debounce"},
	{"locale"},
	{"log-level"},
	{"listen"},
}

func allowedFlags() []string {
	var out []string
	for _, names := range flagNames {
		for _, n := range names {
			out = append(out, "-"+n, "--"+n)
		}
	}
	return out
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a, --api string         remote API base URL
//	-d, --db string          SQLite database path
//	--timeout duration       remote request timeout
//	--debounce duration      search debounce window
//	--locale string          label language (en, pt)
//	--log-level string       debug, info, warn or error
//	--listen string          HTTP API listen address
//
// args are filtered with flagx.FilterArgs first so that subcommands and
// their flags do not interfere.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, allowedFlags())

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "remote API base URL")
	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "remote API base URL (short)")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database path (short)")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "remote request timeout")
	fs.DurationVar(&cfg.SearchDebounce, "debounce", cfg.SearchDebounce, "search debounce window")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "label language")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP API listen address")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return nil
}
