package oracle

import "errors"

var (
	// ErrOracleFailure marks any failed or unusable oracle call. The
	// classified API sentinel from apierr is wrapped alongside it.
	ErrOracleFailure = errors.New("oracle failure")

	// ErrEmptyResponse indicates the model answered with no usable content.
	ErrEmptyResponse = errors.New("empty oracle response")

	// ErrInvalidProvider indicates an unknown provider name.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrEmptyAPIKey indicates the provider's API key is not set.
	ErrEmptyAPIKey = errors.New("API key is required")
)
