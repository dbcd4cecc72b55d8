package llm

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderFIFO(t *testing.T) {
	m := NewMockProvider(
		MockResponse{Text: "first"},
		MockResponse{Text: "second"},
	)

	ctx := context.Background()
	text, err := m.Classify(ctx, "prompt one")
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	text, err = m.Classify(ctx, "prompt two")
	require.NoError(t, err)
	assert.Equal(t, "second", text)

	_, err = m.Classify(ctx, "prompt three")
	assert.Error(t, err)

	assert.Equal(t, []string{"prompt one", "prompt two", "prompt three"}, m.Prompts)
}

func TestWithRetryRecoversFromTransientError(t *testing.T) {
	m := NewMockProvider(
		MockResponse{Err: &StatusError{Provider: "mock", StatusCode: http.StatusTooManyRequests, Body: "slow down"}},
		MockResponse{Text: "Category: Tax"},
	)

	p := &retryProvider{inner: m, maxAttempts: 3, baseDelay: 1}
	text, err := p.Classify(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Category: Tax", text)
	assert.Len(t, m.Prompts, 2)
}

func TestWithRetryDoesNotRetryClientErrors(t *testing.T) {
	m := NewMockProvider(
		MockResponse{Err: &StatusError{Provider: "mock", StatusCode: http.StatusBadRequest, Body: "bad prompt"}},
		MockResponse{Text: "unreachable"},
	)

	p := &retryProvider{inner: m, maxAttempts: 3, baseDelay: 1}
	_, err := p.Classify(context.Background(), "prompt")
	require.Error(t, err)
	assert.Len(t, m.Prompts, 1)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestWithRetrySingleAttemptUnwrapped(t *testing.T) {
	m := NewMockProvider()
	assert.Equal(t, Provider(m), WithRetry(m, 1))
	assert.Equal(t, Provider(m), WithRetry(m, 0))
}

func TestWithRateLimitPassesThrough(t *testing.T) {
	m := NewMockProvider(MockResponse{Text: "ok"})
	p := WithRateLimit(m, 100)

	text, err := p.Classify(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, "mock", p.ModelID())

	assert.Equal(t, Provider(m), WithRateLimit(m, 0))
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Provider: "anthropic", StatusCode: 529, Body: "overloaded"}
	assert.Equal(t, "anthropic API error (529): overloaded", err.Error())
}
