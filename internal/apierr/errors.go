// Package apierr classifies failures of the chat oracle and speech-to-text
// calls and retries the transient ones. OpenAI client errors are mapped to
// the sentinels below by Classify, so the pipeline and the exit code logic
// never inspect HTTP status codes.
package apierr

import "errors"

var (
	// ErrRateLimit is a 429 without a quota message. Retried.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded is a 429 caused by billing limits. Not retried.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout is a request that hit its deadline. Retried.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed is a rejected or missing API key.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest is any other 4xx, such as an unknown model name.
	ErrBadRequest = errors.New("bad request")

	// ErrServer is a 5xx from the provider. Retried.
	ErrServer = errors.New("server error")
)
