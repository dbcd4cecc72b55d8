package routing

import (
	"testing"

	"github.com/doctriage/doctriage/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestRouteBuckets(t *testing.T) {
	cfg := models.ThresholdConfig{AutoAccept: 0.85, Verification: 0.6, Rejection: 0.3}

	tests := []struct {
		confidence float64
		want       models.Disposition
	}{
		{1.0, models.DispositionAccepted},
		{0.86, models.DispositionAccepted},
		{0.85, models.DispositionAccepted}, // boundary: >= auto_accept
		{0.84, models.DispositionReview},
		{0.61, models.DispositionReview},
		{0.6, models.DispositionReview}, // boundary: exactly verification is NOT NeedsVerification
		{0.59, models.DispositionNeedsVerification},
		{0.31, models.DispositionNeedsVerification},
		{0.3, models.DispositionNeedsVerification}, // boundary: >= rejection
		{0.29, models.DispositionRejected},
		{0.0, models.DispositionRejected},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Route(tc.confidence, cfg), "confidence %.2f", tc.confidence)
	}
}

func TestRouteWithMisorderedThresholds(t *testing.T) {
	// Misordered thresholds are flagged by Validate but never corrected;
	// routing applies the rules in order against the raw values.
	cfg := models.ThresholdConfig{AutoAccept: 0.5, Verification: 0.8, Rejection: 0.2}
	assert.Error(t, cfg.Validate())

	assert.Equal(t, models.DispositionAccepted, Route(0.6, cfg))
	assert.Equal(t, models.DispositionNeedsVerification, Route(0.4, cfg))
	assert.Equal(t, models.DispositionRejected, Route(0.1, cfg))
}

func TestValidateOrdering(t *testing.T) {
	assert.NoError(t, models.DefaultThresholds().Validate())
	assert.NoError(t, models.ThresholdConfig{AutoAccept: 0.7, Verification: 0.7, Rejection: 0.7}.Validate())
	assert.Error(t, models.ThresholdConfig{AutoAccept: 0.6, Verification: 0.7, Rejection: 0.3}.Validate())
	assert.Error(t, models.ThresholdConfig{AutoAccept: 0.9, Verification: 0.5, Rejection: 0.6}.Validate())
}
