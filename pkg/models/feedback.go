package models

import (
	"time"

	"github.com/google/uuid"
)

// UserConfidence is the ordinal scale a reviewer picks from when
// confirming or correcting a classification.
type UserConfidence string

const (
	UserConfidenceLow     UserConfidence = "low"
	UserConfidenceMedium  UserConfidence = "medium"
	UserConfidenceHigh    UserConfidence = "high"
	UserConfidenceCertain UserConfidence = "certain"
)

// Value maps the ordinal scale to its fixed numeric anchor.
func (c UserConfidence) Value() float64 {
	switch c {
	case UserConfidenceLow:
		return 0.3
	case UserConfidenceMedium:
		return 0.6
	case UserConfidenceHigh:
		return 0.9
	case UserConfidenceCertain:
		return 1.0
	}
	return 0.6
}

// FeedbackItem records one human judgment against a classification result.
// Items are append-only: never mutated or deleted after creation.
type FeedbackItem struct {
	ID                 uuid.UUID `json:"id"`
	FileID             string    `json:"file_id"`
	PredictedCategory  Category  `json:"predicted_category"`
	CorrectedCategory  Category  `json:"corrected_category"`
	OriginalConfidence float64   `json:"original_confidence"`
	UserConfidence     float64   `json:"user_confidence"`
	Note               string    `json:"note,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// CalibrationRecord is the per-category confidence adjustment derived from
// the full feedback history.
type CalibrationRecord struct {
	Category      Category  `json:"category"`
	Adjustment    float64   `json:"adjustment"`
	FeedbackCount int       `json:"feedback_count"`
	LastUpdated   time.Time `json:"last_updated"`
}
