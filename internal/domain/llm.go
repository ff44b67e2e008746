package domain

import "context"

// TextGenerator produces a completion for a prompt using the caller's own
// Gemini key. Errors are raw upstream errors; callers classify them with
// ClassifyLLMError.
type TextGenerator interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
	// ValidateKey performs a minimal call to confirm the key is usable.
	ValidateKey(ctx context.Context, apiKey string) error
	ModelName() string
}

// ClientEvicter is implemented by generators that cache a client per key.
type ClientEvicter interface {
	Forget(apiKey string)
}
