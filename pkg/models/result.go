package models

import (
	"time"
)

// Stage identifies which pass of the workflow produced an attempt.
type Stage string

const (
	StageFirst    Stage = "first"
	StageDetailed Stage = "detailed"
)

// ClassificationAttempt is the structured result of one model invocation.
// Immutable once parsed.
type ClassificationAttempt struct {
	Category             Category  `json:"category"`
	AIReportedConfidence float64   `json:"ai_reported_confidence"`
	Reasoning            string    `json:"reasoning"`
	RawResponse          string    `json:"raw_response"`
	Model                string    `json:"model,omitempty"`
	Stage                Stage     `json:"stage,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
}

// Factor weights for the overall confidence score.
const (
	WeightAIReported          = 0.35
	WeightResponseQuality     = 0.15
	WeightCategorySpecificity = 0.20
	WeightReasoningQuality    = 0.15
	WeightFeatureAlignment    = 0.15
)

// ConfidenceVector holds the five confidence factors, each in [0,1].
type ConfidenceVector struct {
	AIReported          float64 `json:"ai_reported"`
	ResponseQuality     float64 `json:"response_quality"`
	CategorySpecificity float64 `json:"category_specificity"`
	ReasoningQuality    float64 `json:"reasoning_quality"`
	FeatureAlignment    float64 `json:"feature_alignment"`
}

// Overall is the fixed-weight dot product of the five factors.
func (v ConfidenceVector) Overall() float64 {
	return v.AIReported*WeightAIReported +
		v.ResponseQuality*WeightResponseQuality +
		v.CategorySpecificity*WeightCategorySpecificity +
		v.ReasoningQuality*WeightReasoningQuality +
		v.FeatureAlignment*WeightFeatureAlignment
}

// ConsensusResult is the outcome of weighted voting across attempts from
// distinct models for the same document.
type ConsensusResult struct {
	Category            Category `json:"category"`
	ConsensusConfidence float64  `json:"consensus_confidence"`
	Reasoning           string   `json:"reasoning"`
	Attempts            int      `json:"attempts"`
}

// DocumentFeatures are lightweight classification-independent document
// properties. TextContent is empty when extraction is unavailable; that is
// a degraded feature, not an error.
type DocumentFeatures struct {
	Extension   string `json:"extension"`
	Size        int64  `json:"size"`
	TextContent string `json:"text_content"`
}
