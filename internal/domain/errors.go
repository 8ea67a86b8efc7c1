package domain

import "errors"

var (
	// ErrMissingInput is returned when request text is empty or absent
	ErrMissingInput = errors.New("no text provided")

	// ErrMissingCredential is returned when no model API key is configured
	ErrMissingCredential = errors.New("model API key is not configured")

	// ErrModelOverloaded is returned when the model service is rate limited
	// or overloaded. The retry loop branches on this sentinel; raw upstream
	// error text never reaches the caller.
	ErrModelOverloaded = errors.New("analysis service is under high traffic, please try again later")

	// ErrModelTimeout is returned when a model call loses the timeout race.
	// Timeouts are terminal and never retried.
	ErrModelTimeout = errors.New("analysis request timed out")

	// ErrMalformedResponse is returned when the model replied but no valid
	// JSON array of analyses could be extracted
	ErrMalformedResponse = errors.New("could not parse analysis from model response")

	// ErrModelFailure is returned for any other model-call failure
	ErrModelFailure = errors.New("analysis request failed")

	// ErrOCRFailed is returned when every OCR attempt for an image failed
	ErrOCRFailed = errors.New("text recognition failed for all attempts")

	// ErrRateLimited is returned when a client exceeds the per-IP limit
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
