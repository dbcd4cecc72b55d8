// Package review holds the manual review queue for classifications that
// did not clear auto-accept.
package review

import (
	"context"
	"sync"
	"time"

	"github.com/doctriage/doctriage/pkg/models"
	"github.com/google/uuid"
)

// Status of a queued review item.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// Item is one document awaiting human review.
type Item struct {
	ID         uuid.UUID          `json:"id"`
	FileID     string             `json:"file_id"`
	Category   models.Category    `json:"category"`
	Confidence float64            `json:"confidence"`
	Reasoning  string             `json:"reasoning"`
	Status     Status             `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	Dispo      models.Disposition `json:"disposition"`
}

// Store persists review items. The in-memory Queue implements it, as
// does the database-backed store; callers depend only on the interface
// so the backend can be swapped by configuration.
type Store interface {
	// Add enqueues an item, assigning its ID, pending status and
	// timestamp, and returns the stored item.
	Add(ctx context.Context, item Item) (Item, error)

	// List returns all items in creation order.
	List(ctx context.Context) ([]Item, error)

	// UpdateStatus changes an item's status. Returns false when the
	// item does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (bool, error)

	// Remove deletes an item. Returns false when the item does not
	// exist.
	Remove(ctx context.Context, id uuid.UUID) (bool, error)

	// RemoveByFile deletes all items for a file ID, returning how
	// many were removed.
	RemoveByFile(ctx context.Context, fileID string) (int, error)
}

// Queue is an in-memory Store.
type Queue struct {
	mu    sync.Mutex
	items []Item
}

var _ Store = (*Queue)(nil)

// NewQueue creates an empty review queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Add enqueues an item and assigns its ID and timestamp.
func (q *Queue) Add(_ context.Context, item Item) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	item.ID = uuid.New()
	item.Status = StatusPending
	item.CreatedAt = time.Now().UTC()
	q.items = append(q.items, item)
	return item, nil
}

// List returns a snapshot of the queue.
func (q *Queue) List(_ context.Context) ([]Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out, nil
}

// UpdateStatus changes an item's status. Returns false when the item is
// not in the queue.
func (q *Queue) UpdateStatus(_ context.Context, id uuid.UUID, status Status) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

// Remove deletes an item, typically after feedback resolves it. Returns
// false when the item is not in the queue.
func (q *Queue) Remove(_ context.Context, id uuid.UUID) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// RemoveByFile deletes all items for a file ID, returning how many were
// removed.
func (q *Queue) RemoveByFile(_ context.Context, fileID string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	removed := 0
	for _, item := range q.items {
		if item.FileID == fileID {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	q.items = kept
	return removed, nil
}
