package generation

import "errors"

// Common errors returned by text generators
var (
	// ErrGenerationUnavailable is returned when no generator is configured or the
	// service cannot be reached. Callers with a fallback should use it.
	ErrGenerationUnavailable = errors.New("text generation unavailable")

	// ErrGenerationFailed is returned when generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate text")

	// ErrInvalidResponse is returned when the response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the service blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during text generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
