package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

// rateLimitedProvider throttles calls to the wrapped provider. Consensus
// fans out one call per provider per document, so a shared limiter keeps
// batch runs inside provider quotas.
type rateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps a provider with a requests-per-second limiter.
// A non-positive rps returns the provider unwrapped.
func WithRateLimit(p Provider, rps float64) Provider {
	if rps <= 0 {
		return p
	}
	return &rateLimitedProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (r *rateLimitedProvider) Classify(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Classify(ctx, prompt)
}

func (r *rateLimitedProvider) ModelID() string {
	return r.inner.ModelID()
}

// retryProvider retries transient provider failures with fibonacci
// backoff. This lives at the collaborator boundary: the classification
// core itself treats any failed attempt as final.
type retryProvider struct {
	inner       Provider
	maxAttempts uint64
	baseDelay   time.Duration
}

// WithRetry wraps a provider with bounded retries on rate limiting and
// server errors. maxAttempts <= 1 returns the provider unwrapped.
func WithRetry(p Provider, maxAttempts int) Provider {
	if maxAttempts <= 1 {
		return p
	}
	return &retryProvider{
		inner:       p,
		maxAttempts: uint64(maxAttempts),
		baseDelay:   500 * time.Millisecond,
	}
}

func (r *retryProvider) Classify(ctx context.Context, prompt string) (string, error) {
	var text string
	backoff := retry.WithMaxRetries(r.maxAttempts-1, retry.NewFibonacci(r.baseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		text, err = r.inner.Classify(ctx, prompt)
		if err != nil && isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	return text, err
}

func (r *retryProvider) ModelID() string {
	return r.inner.ModelID()
}

func isTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return false
}
