package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/doctriage/doctriage/pkg/models"
)

// feedbackColumns is the standard column list for feedback queries.
const feedbackColumns = `id, file_id, predicted_category, corrected_category, original_confidence, user_confidence, note, created_at`

// Append stores a feedback item. The history is append-only; items are
// never updated. Satisfies calibration.FeedbackLog.
func (db *DB) Append(ctx context.Context, item models.FeedbackItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO feedback_items (id, file_id, predicted_category, corrected_category, original_confidence, user_confidence, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.FileID, item.PredictedCategory, item.CorrectedCategory,
		item.OriginalConfidence, item.UserConfidence, item.Note, item.Timestamp,
	)
	return err
}

// All returns the complete feedback history in insertion order. Satisfies
// calibration.FeedbackLog; the calibration store recomputes adjustments
// from this full history on every rebuild.
func (db *DB) All(ctx context.Context) ([]models.FeedbackItem, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+feedbackColumns+` FROM feedback_items ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.FeedbackItem
	for rows.Next() {
		var item models.FeedbackItem
		if err := rows.Scan(
			&item.ID, &item.FileID, &item.PredictedCategory, &item.CorrectedCategory,
			&item.OriginalConfidence, &item.UserConfidence, &item.Note, &item.Timestamp,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountFeedbackByCategory returns how many feedback items exist per
// predicted category.
func (db *DB) CountFeedbackByCategory(ctx context.Context) (map[models.Category]int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT predicted_category, COUNT(*) FROM feedback_items GROUP BY predicted_category`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.Category]int)
	for rows.Next() {
		var c models.Category
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, err
		}
		counts[c] = n
	}
	return counts, rows.Err()
}

// DeleteFeedback removes one feedback item, for test cleanup only.
func (db *DB) DeleteFeedback(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM feedback_items WHERE id = $1`, id)
	return err
}
