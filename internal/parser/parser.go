// Package parser extracts structured classification results from free-text
// model output. Extraction is an ordered chain of strategies per field;
// the first strategy that finds a value wins, and every field has a
// default, so Parse never fails.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/doctriage/doctriage/internal/taxonomy"
	"github.com/doctriage/doctriage/pkg/models"
)

const defaultConfidence = 0.5

var (
	categoryLinePattern   = regexp.MustCompile(`(?im)^[ \t]*category:[ \t]*(.+)$`)
	confidenceLinePattern = regexp.MustCompile(`(?i)confidence:[ \t]*([0-9]*\.?[0-9]+)`)
	reasoningPattern      = regexp.MustCompile(`(?is)reasoning:[ \t]*(.+)$`)
)

type categoryStrategy func(raw string) (models.Category, bool)
type confidenceStrategy func(raw string) (float64, bool)
type reasoningStrategy func(raw string) (string, bool)

// confidenceKeywordRule is a compiled whole-word certainty adjective.
type confidenceKeywordRule struct {
	pattern *regexp.Regexp
	score   float64
}

// Parser turns raw model text into a ClassificationAttempt.
type Parser struct {
	categories         []models.Category
	categoryChain      []categoryStrategy
	confidenceChain    []confidenceStrategy
	reasoningChain     []reasoningStrategy
	confidenceKeywords []confidenceKeywordRule
}

// New creates a parser over the fixed taxonomy.
func New() *Parser {
	p := &Parser{
		categories: taxonomy.Categories(),
	}
	for _, kw := range taxonomy.ConfidenceKeywords() {
		p.confidenceKeywords = append(p.confidenceKeywords, confidenceKeywordRule{
			pattern: taxonomy.WordPattern(kw.Phrase),
			score:   kw.Score,
		})
	}
	p.categoryChain = []categoryStrategy{p.categoryFromMarker, p.categoryFromScan}
	p.confidenceChain = []confidenceStrategy{p.confidenceFromMarker, p.confidenceFromKeywords}
	p.reasoningChain = []reasoningStrategy{p.reasoningFromMarker}
	return p
}

// Parse extracts (category, confidence, reasoning) from raw model output.
// Malformed input degrades to defaults: category Other, confidence 0.5,
// reasoning equal to the full response text.
func (p *Parser) Parse(raw string) models.ClassificationAttempt {
	attempt := models.ClassificationAttempt{
		Category:             models.CategoryOther,
		AIReportedConfidence: defaultConfidence,
		Reasoning:            strings.TrimSpace(raw),
		RawResponse:          raw,
		Timestamp:            time.Now().UTC(),
	}

	for _, strategy := range p.categoryChain {
		if c, ok := strategy(raw); ok {
			attempt.Category = c
			break
		}
	}
	for _, strategy := range p.confidenceChain {
		if c, ok := strategy(raw); ok {
			attempt.AIReportedConfidence = clamp(c)
			break
		}
	}
	for _, strategy := range p.reasoningChain {
		if r, ok := strategy(raw); ok {
			attempt.Reasoning = r
			break
		}
	}

	return attempt
}

// categoryFromMarker reads an explicit "Category: <value>" line. The stated
// value must resolve to a known label; otherwise the chain falls through to
// the full-text scan.
func (p *Parser) categoryFromMarker(raw string) (models.Category, bool) {
	m := categoryLinePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	label := strings.Trim(strings.TrimSpace(m[1]), "[]*.")
	return taxonomy.Match(label)
}

// categoryFromScan finds the known label with the earliest literal mention
// in the text. The Other sentinel is excluded: as an ordinary English word
// it would match nearly any response.
func (p *Parser) categoryFromScan(raw string) (models.Category, bool) {
	lower := strings.ToLower(raw)
	best := -1
	var found models.Category
	for _, c := range p.categories {
		if c == models.CategoryOther {
			continue
		}
		idx := strings.Index(lower, strings.ToLower(string(c)))
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
			found = c
		}
	}
	if best < 0 {
		return "", false
	}
	return found, true
}

func (p *Parser) confidenceFromMarker(raw string) (float64, bool) {
	m := confidenceLinePattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// confidenceFromKeywords scans for whole-word certainty adjectives in
// table order, so "very high" is matched before "high".
func (p *Parser) confidenceFromKeywords(raw string) (float64, bool) {
	lower := strings.ToLower(raw)
	for _, kw := range p.confidenceKeywords {
		if kw.pattern.MatchString(lower) {
			return kw.score, true
		}
	}
	return 0, false
}

func (p *Parser) reasoningFromMarker(raw string) (string, bool) {
	m := reasoningPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
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
