// Package consensus merges independent classification attempts for the
// same document into one result via confidence-weighted voting.
package consensus

import (
	"fmt"
	"strings"

	"github.com/doctriage/doctriage/pkg/models"
)

// Combine tallies one vote per attempt, weighted by that attempt's
// reported confidence. The winner is the category with the highest
// accumulated weight; ties break deterministically in favor of the
// category seen first in iteration order. Consensus confidence is the
// winner's weight divided by the total weight of all attempts.
//
// An empty attempt list yields the Other sentinel at zero confidence;
// Combine never fails.
func Combine(attempts []models.ClassificationAttempt) models.ConsensusResult {
	if len(attempts) == 0 {
		return models.ConsensusResult{
			Category:  models.CategoryOther,
			Reasoning: "no classification attempts were available for consensus",
		}
	}

	weights := make(map[models.Category]float64)
	var order []models.Category
	var total float64
	var trace strings.Builder

	for _, a := range attempts {
		if _, seen := weights[a.Category]; !seen {
			order = append(order, a.Category)
		}
		weights[a.Category] += a.AIReportedConfidence
		total += a.AIReportedConfidence

		label := a.Model
		if label == "" {
			label = "model"
		}
		fmt.Fprintf(&trace, "%s voted %s (%.2f): %s\n", label, a.Category, a.AIReportedConfidence, a.Reasoning)
	}

	winner := order[0]
	for _, c := range order[1:] {
		if weights[c] > weights[winner] {
			winner = c
		}
	}

	var confidence float64
	if total > 0 {
		confidence = weights[winner] / total
	}

	return models.ConsensusResult{
		Category:            winner,
		ConsensusConfidence: confidence,
		Reasoning:           strings.TrimRight(trace.String(), "\n"),
		Attempts:            len(attempts),
	}
}
