package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doctriage/doctriage/internal/calibration"
	"github.com/doctriage/doctriage/internal/config"
	"github.com/doctriage/doctriage/internal/taxonomy"
	"github.com/doctriage/doctriage/pkg/models"
)

var (
	feedbackFile       string
	feedbackPredicted  string
	feedbackCorrected  string
	feedbackOriginal   float64
	feedbackConfidence string
	feedbackNote       string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record a human correction for a classification",
	Long: `Record what the correct category was for a previously classified
document. Every submission rebuilds the calibration table from the full
feedback history.

Example:
  doctriage feedback --file ./contract.pdf --predicted Tax --corrected "Sales Contract" --original 0.72 --confidence high`,
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().StringVar(&feedbackFile, "file", "", "Document the feedback refers to (required)")
	feedbackCmd.Flags().StringVar(&feedbackPredicted, "predicted", "", "Category the system predicted (required)")
	feedbackCmd.Flags().StringVar(&feedbackCorrected, "corrected", "", "Correct category per the reviewer (required)")
	feedbackCmd.Flags().Float64Var(&feedbackOriginal, "original", 0, "Confidence the system reported")
	feedbackCmd.Flags().StringVar(&feedbackConfidence, "confidence", "medium", "Reviewer certainty: low, medium, high, or certain")
	feedbackCmd.Flags().StringVar(&feedbackNote, "note", "", "Optional note")
	_ = feedbackCmd.MarkFlagRequired("file")
	_ = feedbackCmd.MarkFlagRequired("predicted")
	_ = feedbackCmd.MarkFlagRequired("corrected")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	predicted, ok := taxonomy.Match(feedbackPredicted)
	if !ok {
		return fmt.Errorf("unknown predicted category %q", feedbackPredicted)
	}
	corrected, ok := taxonomy.Match(feedbackCorrected)
	if !ok {
		return fmt.Errorf("unknown corrected category %q", feedbackCorrected)
	}

	userConfidence := models.UserConfidence(feedbackConfidence)
	switch userConfidence {
	case models.UserConfidenceLow, models.UserConfidenceMedium, models.UserConfidenceHigh, models.UserConfidenceCertain:
	default:
		return fmt.Errorf("confidence must be low, medium, high, or certain")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log, db, err := openFeedbackLog(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	store := calibration.NewStore(log)
	if err := store.Rebuild(ctx); err != nil {
		return fmt.Errorf("load calibration history: %w", err)
	}

	err = store.Record(ctx, models.FeedbackItem{
		FileID:             feedbackFile,
		PredictedCategory:  predicted,
		CorrectedCategory:  corrected,
		OriginalConfidence: feedbackOriginal,
		UserConfidence:     userConfidence.Value(),
		Note:               feedbackNote,
	})
	if err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}

	// Feedback resolves any queued review for the same file.
	if db != nil {
		if _, err := db.DeleteReviewItemsByFile(ctx, feedbackFile); err != nil {
			return fmt.Errorf("resolve review items: %w", err)
		}
	}

	fmt.Printf("Recorded. Adjustment for %s is now %+.3f\n", predicted, store.Adjustment(predicted))
	if cfg.DatabaseURL == "" {
		fmt.Println("Note: no database configured, feedback was not persisted.")
	}
	return nil
}
