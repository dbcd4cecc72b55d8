// Package taxonomy defines the fixed document category set and the
// declarative keyword tables the scoring heuristics run over. The tables
// are plain data so they can be unit-tested and extended without touching
// the scoring algorithm.
package taxonomy

import (
	"regexp"
	"strings"

	"github.com/doctriage/doctriage/pkg/models"
)

var categories = []models.Category{
	models.CategorySalesContract,
	models.CategoryInvoices,
	models.CategoryTax,
	models.CategoryFinancialReport,
	models.CategoryEmploymentContract,
	models.CategoryPII,
	models.CategoryOther,
}

// Categories returns the fixed taxonomy in its canonical order.
func Categories() []models.Category {
	out := make([]models.Category, len(categories))
	copy(out, categories)
	return out
}

// Match resolves a free-form label to a taxonomy category,
// case-insensitively. The second return value is false when the label is
// not part of the taxonomy.
func Match(label string) (models.Category, bool) {
	label = strings.TrimSpace(label)
	for _, c := range categories {
		if strings.EqualFold(label, string(c)) {
			return c, true
		}
	}
	return models.CategoryOther, false
}

// EvidenceRule lists the keywords and file extensions a category is
// expected to exhibit. Used by the feature-alignment factor.
type EvidenceRule struct {
	Keywords   []string
	Extensions []string
}

var evidenceRules = map[models.Category]EvidenceRule{
	models.CategorySalesContract: {
		Keywords:   []string{"agreement", "contract", "terms", "parties", "signature", "purchase"},
		Extensions: []string{".pdf", ".docx", ".doc"},
	},
	models.CategoryInvoices: {
		Keywords:   []string{"invoice", "amount due", "payment", "bill", "total", "due date"},
		Extensions: []string{".pdf", ".xlsx", ".csv"},
	},
	models.CategoryTax: {
		Keywords:   []string{"tax", "irs", "return", "deduction", "taxable", "fiscal"},
		Extensions: []string{".pdf", ".xlsx"},
	},
	models.CategoryFinancialReport: {
		Keywords:   []string{"balance sheet", "income statement", "cash flow", "revenue", "assets", "liabilities"},
		Extensions: []string{".pdf", ".xlsx", ".csv"},
	},
	models.CategoryEmploymentContract: {
		Keywords:   []string{"employment", "employee", "employer", "salary", "termination", "benefits"},
		Extensions: []string{".pdf", ".docx", ".doc"},
	},
	models.CategoryPII: {
		Keywords:   []string{"social security", "passport", "date of birth", "driver's license", "ssn"},
		Extensions: []string{".pdf", ".jpg", ".png", ".docx"},
	},
}

// EvidenceFor returns the evidence rule for a category. Categories without
// a rule (notably Other) score a neutral feature alignment.
func EvidenceFor(c models.Category) (EvidenceRule, bool) {
	r, ok := evidenceRules[c]
	return r, ok
}

// ConfidenceKeyword maps a certainty adjective to a numeric confidence.
type ConfidenceKeyword struct {
	Phrase string
	Score  float64
}

// confidenceKeywords is ordered: longer phrases come before their
// substrings so "very high" wins over "high".
var confidenceKeywords = []ConfidenceKeyword{
	{"very high", 0.95},
	{"very low", 0.2},
	{"high", 0.85},
	{"moderate", 0.6},
	{"medium", 0.6},
	{"low", 0.35},
}

// ConfidenceKeywords returns the ordered adjective-to-score table.
func ConfidenceKeywords() []ConfidenceKeyword {
	out := make([]ConfidenceKeyword, len(confidenceKeywords))
	copy(out, confidenceKeywords)
	return out
}

var hedgingWords = []string{
	"maybe", "perhaps", "possibly", "might", "could be", "not clear", "unclear", "uncertain",
}

// HedgingWords returns the phrases that penalize reasoning quality.
func HedgingWords() []string {
	out := make([]string, len(hedgingWords))
	copy(out, hedgingWords)
	return out
}

// WordPattern compiles a whole-word matcher for a lowercase phrase.
// Substring hits inside longer words do not count: "high" must not match
// "highlights", nor "low" match "below".
func WordPattern(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
}
