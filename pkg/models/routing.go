package models

import "fmt"

// Disposition is the routing outcome of a classification.
type Disposition string

const (
	DispositionAccepted          Disposition = "accepted"
	DispositionReview            Disposition = "review"
	DispositionNeedsVerification Disposition = "needs_verification"
	DispositionRejected          Disposition = "rejected"
)

// ThresholdConfig holds the three routing thresholds. The documented
// invariant is rejection <= verification <= auto_accept.
type ThresholdConfig struct {
	AutoAccept   float64 `json:"auto_accept" yaml:"auto_accept"`
	Verification float64 `json:"verification" yaml:"verification"`
	Rejection    float64 `json:"rejection" yaml:"rejection"`
}

// DefaultThresholds are the routing thresholds used when none are configured.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{AutoAccept: 0.85, Verification: 0.6, Rejection: 0.3}
}

// Validate reports a threshold ordering violation. Callers log the returned
// error as a warning and keep routing with the as-configured values; the
// ordering is never silently corrected.
func (c ThresholdConfig) Validate() error {
	if c.Rejection > c.Verification || c.Verification > c.AutoAccept {
		return fmt.Errorf("threshold ordering violated: rejection (%.2f) <= verification (%.2f) <= auto_accept (%.2f) does not hold",
			c.Rejection, c.Verification, c.AutoAccept)
	}
	return nil
}
