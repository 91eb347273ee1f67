// Package gecko provides the HTTP client for the coinwatch market-data API.
//
// This file contains the shared configuration structure and validation used by
// the API client. It provides a common foundation for configuration management
// and error handling.
package gecko

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidConfig indicates that the provided Config contains invalid values.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLoadFailure indicates a transport-level failure: the endpoint returned
	// a non-success status or the request could not complete.
	ErrLoadFailure = errors.New("load failure")

	// ErrFormatFailure indicates a payload-level failure: the response body was
	// empty or structurally invalid.
	ErrFormatFailure = errors.New("format failure")
)

// Config provides configuration parameters for the API client.
//
// The HTTP client is injectable so that timeout and cancellation policy stays
// with the caller; the core performs no retries and sets no deadlines of its own.
type Config struct {
	// BaseURL is the HTTP endpoint URL for the market-data API.
	BaseURL string

	// HTTPClient performs the requests. Substituting it is the supported way
	// to attach timeouts, transports or test doubles.
	HTTPClient *http.Client
}

// validateConfig ensures all required configuration fields are present and valid,
// applying sensible defaults for optional fields when possible.
func validateConfig(cfg *Config, defaultCfg *Config) error {

	// Apply defaults for optional fields
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultCfg.BaseURL
	}

	if cfg.HTTPClient == nil {
		cfg.HTTPClient = defaultCfg.HTTPClient
	}

	// All validations passed
	return nil
}
