// Package scoring computes the five-factor confidence vector for a single
// classification attempt. Scoring is a pure function of its inputs; the
// keyword tables it consults come from the taxonomy package as data.
package scoring

import (
	"regexp"
	"strings"

	"github.com/doctriage/doctriage/internal/taxonomy"
	"github.com/doctriage/doctriage/pkg/models"
)

// Structural markers a well-formed model response is expected to carry.
var structuralMarkers = []string{"category:", "confidence:", "reasoning:"}

const (
	// specificityPenalty is deducted per competing category mentioned in
	// the response text.
	specificityPenalty = 0.2

	// hedgePenalty multiplies reasoning quality once per hedging phrase.
	hedgePenalty      = 0.7
	hedgeQualityFloor = 0.05

	// Reasoning length scale: at or below lowWordCount words the length
	// score bottoms out, at highWordCount and beyond it saturates.
	lowWordCount   = 10
	highWordCount  = 25
	lowLengthScore = 0.3

	neutralAlignment = 0.5
)

// Input carries everything the scorer needs for one attempt.
type Input struct {
	AIReported  float64
	Category    models.Category
	RawResponse string
	Reasoning   string
	Features    models.DocumentFeatures
}

// Scorer computes confidence vectors. The rule tables are injected so
// heuristics can be tested and tuned independently of the algorithm.
type Scorer struct {
	categories []models.Category
	hedges     []*regexp.Regexp
}

// NewScorer creates a scorer over the default taxonomy tables.
func NewScorer() *Scorer {
	s := &Scorer{categories: taxonomy.Categories()}
	for _, h := range taxonomy.HedgingWords() {
		s.hedges = append(s.hedges, taxonomy.WordPattern(h))
	}
	return s
}

// Score computes the five-factor confidence vector. Every factor is
// clamped to [0,1].
func (s *Scorer) Score(in Input) models.ConfidenceVector {
	return models.ConfidenceVector{
		AIReported:          clamp(in.AIReported),
		ResponseQuality:     s.responseQuality(in.RawResponse),
		CategorySpecificity: s.categorySpecificity(in.Category, in.RawResponse),
		ReasoningQuality:    s.reasoningQuality(in.Reasoning),
		FeatureAlignment:    s.featureAlignment(in.Category, in.Features),
	}
}

// responseQuality is the fraction of expected structural markers present.
func (s *Scorer) responseQuality(raw string) float64 {
	lower := strings.ToLower(raw)
	found := 0
	for _, m := range structuralMarkers {
		if strings.Contains(lower, m) {
			found++
		}
	}
	return float64(found) / float64(len(structuralMarkers))
}

// categorySpecificity starts at 1.0 and loses 0.2 per competing taxonomy
// label mentioned in the response. The Other sentinel never competes.
func (s *Scorer) categorySpecificity(assigned models.Category, raw string) float64 {
	lower := strings.ToLower(raw)
	competing := 0
	for _, c := range s.categories {
		if c == assigned || c == models.CategoryOther {
			continue
		}
		if strings.Contains(lower, strings.ToLower(string(c))) {
			competing++
		}
	}
	return clamp(1.0 - specificityPenalty*float64(competing))
}

// reasoningQuality scales with reasoning length and is multiplicatively
// penalized for hedging language.
func (s *Scorer) reasoningQuality(reasoning string) float64 {
	words := len(strings.Fields(reasoning))
	if words == 0 {
		return 0
	}

	var length float64
	switch {
	case words <= lowWordCount:
		length = lowLengthScore
	case words >= highWordCount:
		length = 1.0
	default:
		length = lowLengthScore + (1.0-lowLengthScore)*float64(words-lowWordCount)/float64(highWordCount-lowWordCount)
	}

	lower := strings.ToLower(reasoning)
	quality := length
	for _, hedge := range s.hedges {
		quality *= pow(hedgePenalty, len(hedge.FindAllStringIndex(lower, -1)))
	}
	if quality < hedgeQualityFloor {
		quality = hedgeQualityFloor
	}
	return clamp(quality)
}

// featureAlignment averages the keyword-match ratio of the extracted text
// and an extension-match boolean when the category has an evidence rule;
// categories without a rule score neutral.
func (s *Scorer) featureAlignment(category models.Category, f models.DocumentFeatures) float64 {
	rule, ok := taxonomy.EvidenceFor(category)
	if !ok {
		return neutralAlignment
	}

	var keywordRatio float64
	if f.TextContent != "" && len(rule.Keywords) > 0 {
		lower := strings.ToLower(f.TextContent)
		matched := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		keywordRatio = float64(matched) / float64(len(rule.Keywords))
	}

	var extMatch float64
	ext := strings.ToLower(f.Extension)
	for _, e := range rule.Extensions {
		if ext == e {
			extMatch = 1.0
			break
		}
	}

	return clamp((keywordRatio + extMatch) / 2)
}

func pow(base float64, n int) float64 {
	out := 1.0
	for range n {
		out *= base
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
