package review

import (
	"testing"

	"github.com/doctriage/doctriage/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueAddListRemove(t *testing.T) {
	ctx := t.Context()
	q := NewQueue()

	item, err := q.Add(ctx, Item{
		FileID:     "doc-1",
		Category:   models.CategoryInvoices,
		Confidence: 0.55,
		Dispo:      models.DispositionNeedsVerification,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, StatusPending, item.Status)
	assert.False(t, item.CreatedAt.IsZero())

	list, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "doc-1", list[0].FileID)

	removed, err := q.Remove(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	list, err = q.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	removed, err = q.Remove(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestQueueUpdateStatus(t *testing.T) {
	ctx := t.Context()
	q := NewQueue()
	item, err := q.Add(ctx, Item{FileID: "doc-2", Category: models.CategoryTax})
	require.NoError(t, err)

	ok, err := q.UpdateStatus(ctx, item.ID, StatusResolved)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := q.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, list[0].Status)

	ok, err = q.UpdateStatus(ctx, uuid.New(), StatusResolved)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueueRemoveByFile(t *testing.T) {
	ctx := t.Context()
	q := NewQueue()
	for _, fileID := range []string{"doc-3", "doc-3", "doc-4"} {
		_, err := q.Add(ctx, Item{FileID: fileID})
		require.NoError(t, err)
	}

	removed, err := q.RemoveByFile(ctx, "doc-3")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	list, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "doc-4", list[0].FileID)
}
