package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doctriage/doctriage/internal/calibration"
	"github.com/doctriage/doctriage/internal/config"
	"github.com/doctriage/doctriage/internal/database"
	"github.com/doctriage/doctriage/internal/engine"
	"github.com/doctriage/doctriage/internal/llm"
	"github.com/doctriage/doctriage/internal/review"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "doctriage",
	Short: "AI document categorization with calibrated confidence",
	Long: `Doctriage classifies documents into a fixed business taxonomy using
one or more AI model providers, scores each classification with a
multi-factor confidence model, calibrates the score against accumulated
human feedback, and routes the result to auto-accept, review, or
rejection.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default config.yaml)")

	rootCmd.AddCommand(categorizeCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// stack bundles the wired classification components.
type stack struct {
	engine     *engine.Engine
	calibrator *calibration.Store
	reviews    review.Store
	db         *database.DB
}

func (s *stack) close() {
	if s.db != nil {
		s.db.Close()
	}
}

// openFeedbackLog returns the feedback history backend: Postgres when a
// database is configured, in-memory otherwise.
func openFeedbackLog(ctx context.Context, cfg config.Config) (calibration.FeedbackLog, *database.DB, error) {
	if cfg.DatabaseURL == "" {
		return calibration.NewMemoryLog(), nil, nil
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, db, nil
}

// buildStack wires providers, calibration, and the review queue from
// configuration.
func buildStack(ctx context.Context, cfg config.Config) (*stack, error) {
	log, db, err := openFeedbackLog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := calibration.NewStore(log)
	if err := store.Rebuild(ctx); err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("load calibration history: %w", err)
	}

	providers, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}

	// Review items persist alongside the feedback history when a
	// database is configured; otherwise they live for the process only.
	var reviews review.Store = review.NewQueue()
	if db != nil {
		reviews = db.ReviewStore()
	}

	eng, err := engine.New(providers, store,
		engine.WithThresholds(cfg.Thresholds),
		engine.WithEscalationThreshold(cfg.EscalationThreshold),
		engine.WithReviewStore(reviews),
	)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}

	return &stack{engine: eng, calibrator: store, reviews: reviews, db: db}, nil
}
