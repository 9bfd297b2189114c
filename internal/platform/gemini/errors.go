package gemini

import "errors"

var (
	// ErrInvalidConfig indicates the executor configuration is unusable.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrInvalidResponse indicates the model returned nothing usable.
	ErrInvalidResponse = errors.New("invalid response from gemini")

	// ErrContentBlocked indicates the model refused the prompt on safety
	// grounds. Not retried.
	ErrContentBlocked = errors.New("content blocked by safety filters")
)
