// Package config provides error definitions for configuration-related errors.
package config

import "errors"

// Configuration validation errors
var (
	// ErrMissingCSVPath is returned when no CSV source is configured
	ErrMissingCSVPath = errors.New("CSV source path is required")

	// ErrInvalidHTTPTimeout is returned when the HTTP timeout is not positive
	ErrInvalidHTTPTimeout = errors.New("CSV HTTP timeout must be greater than 0")

	// ErrInvalidServerPort is returned when the callback server port is out of range
	ErrInvalidServerPort = errors.New("server port must be between 1 and 65535")
)
