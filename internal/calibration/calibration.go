// Package calibration adjusts raw confidence scores using accumulated
// human feedback. The store owns a per-category adjustment map that is
// rebuilt in full from the feedback history on every submission and
// swapped in atomically, so readers never observe a partial rebuild.
package calibration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/doctriage/doctriage/pkg/models"
)

// FeedbackLog is the append-only feedback history. Implementations must
// return the complete history from All so the store can recompute
// adjustments from scratch.
type FeedbackLog interface {
	Append(ctx context.Context, item models.FeedbackItem) error
	All(ctx context.Context) ([]models.FeedbackItem, error)
}

// MemoryLog is the in-memory FeedbackLog.
type MemoryLog struct {
	mu    sync.Mutex
	items []models.FeedbackItem
}

// NewMemoryLog creates an empty in-memory feedback log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append adds an item to the history.
func (l *MemoryLog) Append(_ context.Context, item models.FeedbackItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, item)
	return nil
}

// All returns a copy of the complete history.
func (l *MemoryLog) All(_ context.Context) ([]models.FeedbackItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.FeedbackItem, len(l.items))
	copy(out, l.items)
	return out, nil
}

// Store maps categories to confidence adjustments. Empty until the first
// feedback item arrives; consulted read-only by the scoring pipeline.
type Store struct {
	mu      sync.RWMutex
	records map[models.Category]models.CalibrationRecord
	log     FeedbackLog
}

// NewStore creates a calibration store over a feedback log. The store
// starts empty; call Rebuild to load adjustments from pre-existing history.
func NewStore(log FeedbackLog) *Store {
	return &Store{
		records: make(map[models.Category]models.CalibrationRecord),
		log:     log,
	}
}

// Record appends a feedback item and immediately rebuilds the adjustment
// map from the full history. There is no staleness window after a
// submission returns.
func (s *Store) Record(ctx context.Context, item models.FeedbackItem) error {
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now().UTC()
	}
	if err := s.log.Append(ctx, item); err != nil {
		return fmt.Errorf("append feedback: %w", err)
	}
	return s.Rebuild(ctx)
}

// Rebuild recomputes every category's adjustment from the complete
// feedback history and swaps the new map in atomically. Adjustment is
// mean(user confidence) - mean(original confidence) per predicted
// category; a full recompute, never an incremental average.
func (s *Store) Rebuild(ctx context.Context) error {
	items, err := s.log.All(ctx)
	if err != nil {
		return fmt.Errorf("read feedback history: %w", err)
	}

	type sums struct {
		user, original float64
		count          int
	}
	byCategory := make(map[models.Category]*sums)
	for _, item := range items {
		g := byCategory[item.PredictedCategory]
		if g == nil {
			g = &sums{}
			byCategory[item.PredictedCategory] = g
		}
		g.user += item.UserConfidence
		g.original += item.OriginalConfidence
		g.count++
	}

	now := time.Now().UTC()
	records := make(map[models.Category]models.CalibrationRecord, len(byCategory))
	for c, g := range byCategory {
		n := float64(g.count)
		records[c] = models.CalibrationRecord{
			Category:      c,
			Adjustment:    g.user/n - g.original/n,
			FeedbackCount: g.count,
			LastUpdated:   now,
		}
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

// Calibrate applies the category's adjustment to a confidence score,
// clamped to [0,1]. Categories without feedback history pass through
// unchanged, as does everything before the first rebuild.
func (s *Store) Calibrate(category models.Category, confidence float64) float64 {
	s.mu.RLock()
	rec, ok := s.records[category]
	s.mu.RUnlock()
	if !ok {
		return confidence
	}

	calibrated := confidence + rec.Adjustment
	if calibrated < 0 {
		return 0
	}
	if calibrated > 1 {
		return 1
	}
	return calibrated
}

// Adjustment returns the current adjustment for a category, zero when no
// feedback exists.
func (s *Store) Adjustment(category models.Category) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[category].Adjustment
}

// Records returns a snapshot of all calibration records.
func (s *Store) Records() []models.CalibrationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CalibrationRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out
}
