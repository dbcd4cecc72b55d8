package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/doctriage/doctriage/internal/review"
)

// reviewColumns is the standard column list for review queries.
const reviewColumns = `id, file_id, category, confidence, reasoning, status, disposition, created_at`

// listAllLimit caps unpaginated listings through the review.Store
// interface.
const listAllLimit = 1000

// scanReviewItem scans a row into a review.Item.
func scanReviewItem(row pgx.Row) (*review.Item, error) {
	var item review.Item
	err := row.Scan(
		&item.ID, &item.FileID, &item.Category, &item.Confidence,
		&item.Reasoning, &item.Status, &item.Dispo, &item.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateReviewItem enqueues an item, assigning its ID, pending status, and
// timestamp.
func (db *DB) CreateReviewItem(ctx context.Context, item review.Item) (*review.Item, error) {
	item.ID = uuid.New()
	item.Status = review.StatusPending
	item.CreatedAt = time.Now().UTC()

	row := db.pool.QueryRow(ctx,
		`INSERT INTO review_items (id, file_id, category, confidence, reasoning, status, disposition, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+reviewColumns,
		item.ID, item.FileID, item.Category, item.Confidence,
		item.Reasoning, item.Status, item.Dispo, item.CreatedAt,
	)
	return scanReviewItem(row)
}

// GetReviewItemByID retrieves a review item by ID.
func (db *DB) GetReviewItemByID(ctx context.Context, id uuid.UUID) (*review.Item, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM review_items WHERE id = $1`,
		id,
	)
	return scanReviewItem(row)
}

// ListReviewItemsParams contains parameters for listing review items.
type ListReviewItemsParams struct {
	Status *review.Status
	Limit  int
	Offset int
}

// ListReviewItems returns queued items, oldest first.
func (db *DB) ListReviewItems(ctx context.Context, params ListReviewItemsParams) ([]review.Item, error) {
	if params.Limit <= 0 {
		params.Limit = 50
	}

	var rows pgx.Rows
	var err error

	if params.Status != nil {
		rows, err = db.pool.Query(ctx,
			`SELECT `+reviewColumns+` FROM review_items
			 WHERE status = $1
			 ORDER BY created_at
			 LIMIT $2 OFFSET $3`,
			*params.Status, params.Limit, params.Offset,
		)
	} else {
		rows, err = db.pool.Query(ctx,
			`SELECT `+reviewColumns+` FROM review_items
			 ORDER BY created_at
			 LIMIT $1 OFFSET $2`,
			params.Limit, params.Offset,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []review.Item
	for rows.Next() {
		var item review.Item
		if err := rows.Scan(
			&item.ID, &item.FileID, &item.Category, &item.Confidence,
			&item.Reasoning, &item.Status, &item.Dispo, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateReviewItemStatus changes an item's status. Returns false when the
// item does not exist.
func (db *DB) UpdateReviewItemStatus(ctx context.Context, id uuid.UUID, status review.Status) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE review_items SET status = $2 WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// DeleteReviewItem removes an item, typically after feedback resolves it.
func (db *DB) DeleteReviewItem(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM review_items WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// DeleteReviewItemsByFile removes every queued item for a file, returning
// how many were removed.
func (db *DB) DeleteReviewItemsByFile(ctx context.Context, fileID string) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM review_items WHERE file_id = $1`,
		fileID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// ReviewStore adapts the review_items table to review.Store, so the
// engine and the API can persist review items when a database is
// configured.
type ReviewStore struct {
	db *DB
}

var _ review.Store = (*ReviewStore)(nil)

// ReviewStore returns the database-backed review store.
func (db *DB) ReviewStore() *ReviewStore {
	return &ReviewStore{db: db}
}

func (s *ReviewStore) Add(ctx context.Context, item review.Item) (review.Item, error) {
	created, err := s.db.CreateReviewItem(ctx, item)
	if err != nil {
		return review.Item{}, err
	}
	return *created, nil
}

func (s *ReviewStore) List(ctx context.Context) ([]review.Item, error) {
	return s.db.ListReviewItems(ctx, ListReviewItemsParams{Limit: listAllLimit})
}

func (s *ReviewStore) UpdateStatus(ctx context.Context, id uuid.UUID, status review.Status) (bool, error) {
	return s.db.UpdateReviewItemStatus(ctx, id, status)
}

func (s *ReviewStore) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.db.DeleteReviewItem(ctx, id)
}

func (s *ReviewStore) RemoveByFile(ctx context.Context, fileID string) (int, error) {
	n, err := s.db.DeleteReviewItemsByFile(ctx, fileID)
	return int(n), err
}
