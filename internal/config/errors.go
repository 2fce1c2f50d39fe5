package config

import "errors"

// Sentinels returned by Load and Validate.
var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnknownDriver is wrapped together with ErrInvalidConfig.
	ErrUnknownDriver = errors.New("unknown store driver")
)
