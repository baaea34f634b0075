// Package config defines process configuration and its loading order:
// defaults, then an optional YAML file, then MATCHUP_-prefixed environment
// variables.
package config

import "github.com/deepscout/matchup/internal/ftcscout"

// Config contains process configuration shared by the CLI and serve mode.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for serve mode, e.g. ":8090".
	Addr string `koanf:"addr"`

	// BaseURL is the FTCScout API root.
	BaseURL string `koanf:"base_url"`

	// Season selects the default game season (e.g. 2024 for INTO THE DEEP).
	Season int `koanf:"season"`

	// HTTPTimeoutSeconds bounds each upstream API request.
	HTTPTimeoutSeconds int `koanf:"http_timeout_seconds"`

	// DBPath overrides the cache database location. Empty means the
	// per-user default under the home directory.
	DBPath string `koanf:"db_path"`

	// AllowedOrigins configures CORS for serve mode.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New returns a Config with defaults applied.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8090",
		BaseURL:            ftcscout.DefaultBaseURL,
		Season:             2024,
		HTTPTimeoutSeconds: 30,
		AllowedOrigins:     []string{"*"},
	}
}
