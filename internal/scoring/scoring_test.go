package scoring

import (
	"strings"
	"testing"

	"github.com/doctriage/doctriage/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestScoreFactorsAndOverallInBounds(t *testing.T) {
	inputs := []Input{
		{},
		{AIReported: 1.5, Category: models.CategoryInvoices, RawResponse: "Category: Invoices"},
		{AIReported: -0.3, Category: models.CategoryOther, Reasoning: strings.Repeat("word ", 100)},
		{
			AIReported:  0.85,
			Category:    models.CategoryTax,
			RawResponse: "Category: Tax\nConfidence: 0.85\nReasoning: Sales Contract Invoices Financial Report Employment Contract PII",
			Reasoning:   "maybe perhaps possibly might could be not clear",
			Features:    models.DocumentFeatures{Extension: ".pdf", TextContent: "tax irs return"},
		},
	}

	s := NewScorer()
	for _, in := range inputs {
		v := s.Score(in)
		for name, f := range map[string]float64{
			"ai_reported":          v.AIReported,
			"response_quality":     v.ResponseQuality,
			"category_specificity": v.CategorySpecificity,
			"reasoning_quality":    v.ReasoningQuality,
			"feature_alignment":    v.FeatureAlignment,
		} {
			assert.GreaterOrEqual(t, f, 0.0, name)
			assert.LessOrEqual(t, f, 1.0, name)
		}
		overall := v.Overall()
		assert.GreaterOrEqual(t, overall, 0.0)
		assert.LessOrEqual(t, overall, 1.0)
	}
}

func TestResponseQualityMarkerFraction(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 0.0, s.Score(Input{RawResponse: "no structure here"}).ResponseQuality)
	assert.InDelta(t, 1.0/3.0, s.Score(Input{RawResponse: "Category: Tax"}).ResponseQuality, 1e-9)
	assert.InDelta(t, 2.0/3.0, s.Score(Input{RawResponse: "Category: Tax\nConfidence: 0.9"}).ResponseQuality, 1e-9)
	assert.Equal(t, 1.0, s.Score(Input{RawResponse: "Category: Tax\nConfidence: 0.9\nReasoning: x"}).ResponseQuality)
}

func TestCategorySpecificity(t *testing.T) {
	s := NewScorer()

	// Only the assigned category is mentioned.
	v := s.Score(Input{Category: models.CategoryTax, RawResponse: "Category: Tax, clearly."})
	assert.Equal(t, 1.0, v.CategorySpecificity)

	// Two competing labels knock off 0.2 each.
	v = s.Score(Input{
		Category:    models.CategoryTax,
		RawResponse: "Category: Tax. Could also be Invoices or a Financial Report.",
	})
	assert.InDelta(t, 0.6, v.CategorySpecificity, 1e-9)
}

func TestReasoningQualityLengthScale(t *testing.T) {
	s := NewScorer()

	short := s.Score(Input{Reasoning: "Too short to tell much here."}).ReasoningQuality
	long := s.Score(Input{Reasoning: strings.Repeat("evidence ", 30)}).ReasoningQuality

	assert.InDelta(t, 0.3, short, 1e-9)
	assert.Equal(t, 1.0, long)
	assert.Greater(t, long, short)
}

func TestReasoningQualityHedgingPenalty(t *testing.T) {
	s := NewScorer()
	confident := strings.Repeat("strong evidence ", 15)
	hedged := confident + " but maybe perhaps possibly it might be something else entirely"

	cq := s.Score(Input{Reasoning: confident}).ReasoningQuality
	hq := s.Score(Input{Reasoning: hedged}).ReasoningQuality

	assert.Less(t, hq, cq)
	assert.GreaterOrEqual(t, hq, 0.05)
}

func TestReasoningQualityHedgesAreWholeWords(t *testing.T) {
	s := NewScorer()
	plain := strings.Repeat("strong evidence ", 15)

	// "mighty" contains "might" but is not a hedge.
	clean := s.Score(Input{Reasoning: plain + "from a mighty detailed ledger"}).ReasoningQuality
	hedged := s.Score(Input{Reasoning: plain + "though it might be a ledger"}).ReasoningQuality

	assert.Equal(t, 1.0, clean)
	assert.Less(t, hedged, clean)
}

func TestFeatureAlignment(t *testing.T) {
	s := NewScorer()

	// Rule exists, full keyword and extension match.
	v := s.Score(Input{
		Category: models.CategoryInvoices,
		Features: models.DocumentFeatures{
			Extension:   ".pdf",
			TextContent: "invoice amount due payment bill total due date",
		},
	})
	assert.Equal(t, 1.0, v.FeatureAlignment)

	// Rule exists, nothing matches.
	v = s.Score(Input{
		Category: models.CategoryInvoices,
		Features: models.DocumentFeatures{Extension: ".exe", TextContent: "unrelated"},
	})
	assert.Equal(t, 0.0, v.FeatureAlignment)

	// No rule for the sentinel: neutral.
	v = s.Score(Input{Category: models.CategoryOther})
	assert.Equal(t, 0.5, v.FeatureAlignment)

	// Extension match alone contributes half.
	v = s.Score(Input{
		Category: models.CategoryTax,
		Features: models.DocumentFeatures{Extension: ".pdf"},
	})
	assert.Equal(t, 0.5, v.FeatureAlignment)
}

func TestOverallWeights(t *testing.T) {
	v := models.ConfidenceVector{
		AIReported:          1,
		ResponseQuality:     1,
		CategorySpecificity: 1,
		ReasoningQuality:    1,
		FeatureAlignment:    1,
	}
	assert.InDelta(t, 1.0, v.Overall(), 1e-9)

	v = models.ConfidenceVector{AIReported: 1}
	assert.InDelta(t, 0.35, v.Overall(), 1e-9)
}
