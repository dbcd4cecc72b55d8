package consensus

import (
	"testing"

	"github.com/doctriage/doctriage/pkg/models"
	"github.com/stretchr/testify/assert"
)

func attempt(c models.Category, conf float64) models.ClassificationAttempt {
	return models.ClassificationAttempt{Category: c, AIReportedConfidence: conf, Reasoning: "r"}
}

func TestCombineWeightedWinner(t *testing.T) {
	attempts := []models.ClassificationAttempt{
		attempt(models.CategoryInvoices, 0.9),
		attempt(models.CategoryTax, 0.9),
		attempt(models.CategoryInvoices, 0.1),
	}

	// Invoices accumulates 1.0 against Tax's 0.9, regardless of order.
	perms := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for _, p := range perms {
		shuffled := []models.ClassificationAttempt{attempts[p[0]], attempts[p[1]], attempts[p[2]]}
		r := Combine(shuffled)
		assert.Equal(t, models.CategoryInvoices, r.Category, "perm %v", p)
		assert.InDelta(t, 1.0/1.9, r.ConsensusConfidence, 1e-9, "perm %v", p)
		assert.Equal(t, 3, r.Attempts)
	}
}

func TestCombineTieBreaksFirstSeen(t *testing.T) {
	r := Combine([]models.ClassificationAttempt{
		attempt(models.CategoryTax, 0.5),
		attempt(models.CategoryInvoices, 0.5),
	})
	assert.Equal(t, models.CategoryTax, r.Category)
	assert.InDelta(t, 0.5, r.ConsensusConfidence, 1e-9)

	r = Combine([]models.ClassificationAttempt{
		attempt(models.CategoryInvoices, 0.5),
		attempt(models.CategoryTax, 0.5),
	})
	assert.Equal(t, models.CategoryInvoices, r.Category)
}

func TestCombineEmptyInput(t *testing.T) {
	r := Combine(nil)
	assert.Equal(t, models.CategoryOther, r.Category)
	assert.Equal(t, 0.0, r.ConsensusConfidence)
	assert.NotEmpty(t, r.Reasoning)
	assert.Zero(t, r.Attempts)
}

func TestCombineAllZeroConfidence(t *testing.T) {
	r := Combine([]models.ClassificationAttempt{
		attempt(models.CategoryPII, 0),
		attempt(models.CategoryTax, 0),
	})
	assert.Equal(t, models.CategoryPII, r.Category)
	assert.Equal(t, 0.0, r.ConsensusConfidence)
}

func TestCombineReasoningTrace(t *testing.T) {
	a := attempt(models.CategoryTax, 0.8)
	a.Model = "claude-sonnet"
	a.Reasoning = "mentions the IRS"
	b := attempt(models.CategoryTax, 0.7)
	b.Model = "gpt-4o"
	b.Reasoning = "fiscal year summary"

	r := Combine([]models.ClassificationAttempt{a, b})
	assert.Contains(t, r.Reasoning, "claude-sonnet voted Tax (0.80): mentions the IRS")
	assert.Contains(t, r.Reasoning, "gpt-4o voted Tax (0.70): fiscal year summary")
}
