package config

import "errors"

// Sentinel error kinds for this package, so callers can errors.Is on the
// failure class.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
