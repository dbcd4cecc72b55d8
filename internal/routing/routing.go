// Package routing maps a calibrated confidence score to a disposition.
//
// The buckets are half-open intervals over the three configured
// thresholds:
//
//	[auto_accept, 1]            -> Accepted
//	[verification, auto_accept) -> Review
//	[rejection, verification)   -> NeedsVerification
//	[0, rejection)              -> Rejected
//
// A confidence exactly equal to verification routes to Review, and one
// exactly equal to auto_accept routes to Accepted. Misordered thresholds
// are a configuration warning (see models.ThresholdConfig.Validate), not
// an error: routing proceeds with the values as configured.
package routing

import "github.com/doctriage/doctriage/pkg/models"

// Route returns the disposition for a calibrated confidence score.
// First matching rule wins.
func Route(confidence float64, cfg models.ThresholdConfig) models.Disposition {
	switch {
	case confidence >= cfg.AutoAccept:
		return models.DispositionAccepted
	case confidence < cfg.Rejection:
		return models.DispositionRejected
	case confidence < cfg.Verification:
		return models.DispositionNeedsVerification
	default:
		return models.DispositionReview
	}
}
