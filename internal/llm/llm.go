// Package llm provides the model provider clients used for document
// classification. Each provider accepts a prompt and returns the model's
// free text; parsing that text into a structured result happens upstream.
package llm

import (
	"context"
	"fmt"
)

// Provider is one classification model endpoint.
type Provider interface {
	// Classify sends a prompt and returns the raw response text. Any
	// non-success response surfaces as a *StatusError; the core never
	// retries (wrappers at this boundary may, see WithRetry).
	Classify(ctx context.Context, prompt string) (string, error)

	// ModelID returns the model identifier this provider is configured
	// to use.
	ModelID() string
}

// StatusError carries the HTTP status and response body of a failed
// provider call.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Body)
}

const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.1
)
