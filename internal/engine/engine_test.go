package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctriage/doctriage/internal/calibration"
	"github.com/doctriage/doctriage/internal/llm"
	"github.com/doctriage/doctriage/internal/review"
	"github.com/doctriage/doctriage/pkg/models"
)

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newStore(t *testing.T) *calibration.Store {
	t.Helper()
	return calibration.NewStore(calibration.NewMemoryLog())
}

const invoiceResponse = "Category: Invoices\n" +
	"Confidence: 0.9\n" +
	"Reasoning: The document lists an invoice number, a billing address, itemized line amounts, " +
	"a total amount due, and standard payment terms, which together are conclusive evidence " +
	"of an invoice rather than any other business record."

func TestProcessSingleProviderHighConfidence(t *testing.T) {
	doc := writeDoc(t, "march.csv", "invoice 1042\namount due: 512.00\npayment due date: 2026-04-01\ntotal: 512.00\n")
	mock := llm.NewMockProvider(llm.MockResponse{Text: invoiceResponse})

	eng, err := New([]llm.Provider{mock}, newStore(t),
		WithThresholds(models.ThresholdConfig{AutoAccept: 0.8, Verification: 0.5, Rejection: 0.2}))
	require.NoError(t, err)

	res, err := eng.Process(context.Background(), doc)
	require.NoError(t, err)

	// High first-pass confidence means no detailed pass.
	assert.Len(t, mock.Prompts, 1)
	assert.Equal(t, models.StageFirst, res.Attempt.Stage)
	assert.Equal(t, models.CategoryInvoices, res.Attempt.Category)
	assert.Nil(t, res.Consensus)

	assert.InDelta(t, 0.9, res.Vector.AIReported, 1e-9)
	assert.InDelta(t, 1.0, res.Vector.ResponseQuality, 1e-9)
	assert.GreaterOrEqual(t, res.OverallConfidence, 0.8)
	assert.Equal(t, models.DispositionAccepted, res.Disposition)

	// Identity calibration with no feedback history.
	assert.Equal(t, res.OverallConfidence, res.CalibratedConfidence)

	prompt := mock.Prompts[0]
	assert.Contains(t, prompt, "march.csv")
	assert.Contains(t, prompt, "invoice 1042")
	assert.Contains(t, prompt, "Category:")
}

func TestProcessEscalatesToDetailedPass(t *testing.T) {
	doc := writeDoc(t, "doc.txt", "quarterly filing draft")
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Category: Tax\nConfidence: 0.4\nReasoning: thin evidence."},
		llm.MockResponse{Text: "Category: Tax\nConfidence: 0.99\nReasoning: The filing references deductions, taxable income, and fiscal-year totals throughout the body."},
	)

	eng, err := New([]llm.Provider{mock}, newStore(t))
	require.NoError(t, err)

	res, err := eng.Process(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, mock.Prompts, 2)
	assert.Contains(t, mock.Prompts[1], `"Tax"`, "detailed prompt is seeded with the first-pass category")
	assert.Contains(t, mock.Prompts[1], "evidence score")

	// The detailed result replaces the first pass and its confidence is
	// capped, not blended.
	assert.Equal(t, models.StageDetailed, res.Attempt.Stage)
	assert.InDelta(t, 0.95, res.Attempt.AIReportedConfidence, 1e-9)
	assert.InDelta(t, 0.95, res.Vector.AIReported, 1e-9)
}

func TestProcessDetailedFailureKeepsFirstPass(t *testing.T) {
	doc := writeDoc(t, "doc.txt", "quarterly filing draft")
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Category: Tax\nConfidence: 0.4\nReasoning: thin evidence."},
		llm.MockResponse{Err: &llm.StatusError{Provider: "mock", StatusCode: 503, Body: "overloaded"}},
	)

	eng, err := New([]llm.Provider{mock}, newStore(t))
	require.NoError(t, err)

	res, err := eng.Process(context.Background(), doc)
	require.NoError(t, err)

	// Both passes were attempted, but the failed detailed pass degrades
	// to the first-pass result instead of failing the document.
	assert.Len(t, mock.Prompts, 2)
	assert.Equal(t, models.StageFirst, res.Attempt.Stage)
	assert.Equal(t, models.CategoryTax, res.Attempt.Category)
	assert.InDelta(t, 0.4, res.Attempt.AIReportedConfidence, 1e-9)
}

func TestProcessFirstPassAtThresholdSkipsDetailed(t *testing.T) {
	doc := writeDoc(t, "doc.txt", "hello")
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Category: Tax\nConfidence: 0.7\nReasoning: adequate."},
	)

	eng, err := New([]llm.Provider{mock}, newStore(t))
	require.NoError(t, err)

	res, err := eng.Process(context.Background(), doc)
	require.NoError(t, err)
	assert.Len(t, mock.Prompts, 1)
	assert.Equal(t, models.StageFirst, res.Attempt.Stage)
}

func TestProcessConsensusModeSkipsTwoStage(t *testing.T) {
	doc := writeDoc(t, "doc.txt", "invoice total amount due")
	a := llm.NewMockProvider(llm.MockResponse{Text: "Category: Invoices\nConfidence: 0.9\nReasoning: billing layout."}).WithModelID("model-a")
	b := llm.NewMockProvider(llm.MockResponse{Text: "Category: Tax\nConfidence: 0.9\nReasoning: fiscal references."}).WithModelID("model-b")
	c := llm.NewMockProvider(llm.MockResponse{Text: "Category: Invoices\nConfidence: 0.1\nReasoning: weak hunch."}).WithModelID("model-c")

	eng, err := New([]llm.Provider{a, b, c}, newStore(t))
	require.NoError(t, err)

	res, err := eng.Process(context.Background(), doc)
	require.NoError(t, err)

	// One call per provider, no escalation even for the 0.1 vote.
	assert.Len(t, a.Prompts, 1)
	assert.Len(t, b.Prompts, 1)
	assert.Len(t, c.Prompts, 1)

	require.NotNil(t, res.Consensus)
	assert.Equal(t, models.CategoryInvoices, res.Consensus.Category)
	assert.InDelta(t, 1.0/1.9, res.Consensus.ConsensusConfidence, 1e-9)
	assert.Equal(t, 3, res.Consensus.Attempts)

	assert.Equal(t, models.CategoryInvoices, res.Attempt.Category)
	assert.Equal(t, "model-a", res.Attempt.Model)
	assert.InDelta(t, 1.0/1.9, res.Vector.AIReported, 1e-9)
}

func TestProcessConsensusToleratesProviderFailure(t *testing.T) {
	doc := writeDoc(t, "doc.txt", "invoice")
	ok := llm.NewMockProvider(llm.MockResponse{Text: invoiceResponse}).WithModelID("model-a")
	broken := llm.NewMockProvider(llm.MockResponse{Err: &llm.StatusError{Provider: "mock", StatusCode: 503, Body: "down"}}).WithModelID("model-b")

	eng, err := New([]llm.Provider{ok, broken}, newStore(t))
	require.NoError(t, err)

	res, err := eng.Process(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, res.Consensus)
	assert.Equal(t, 1, res.Consensus.Attempts)
	assert.Equal(t, models.CategoryInvoices, res.Attempt.Category)
}

func TestProcessConsensusAllProvidersFailed(t *testing.T) {
	doc := writeDoc(t, "doc.txt", "invoice")
	errResp := llm.MockResponse{Err: &llm.StatusError{Provider: "mock", StatusCode: 500, Body: "boom"}}
	a := llm.NewMockProvider(errResp)
	b := llm.NewMockProvider(errResp)

	eng, err := New([]llm.Provider{a, b}, newStore(t))
	require.NoError(t, err)

	_, err = eng.Process(context.Background(), doc)
	require.Error(t, err)

	var statusErr *llm.StatusError
	assert.ErrorAs(t, err, &statusErr)
}

func TestProcessEnqueuesForReview(t *testing.T) {
	doc := writeDoc(t, "doc.txt", "hello")
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Category: Tax\nConfidence: 0.75\nReasoning: short."},
	)
	queue := review.NewQueue()

	eng, err := New([]llm.Provider{mock}, newStore(t),
		WithReviewStore(queue),
		WithThresholds(models.ThresholdConfig{AutoAccept: 0.99, Verification: 0.01, Rejection: 0.001}))
	require.NoError(t, err)

	res, err := eng.Process(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, models.DispositionReview, res.Disposition)

	require.NotNil(t, res.ReviewItem)
	items, err := queue.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, doc, items[0].FileID)
	assert.Equal(t, models.CategoryTax, items[0].Category)
	assert.Equal(t, review.StatusPending, items[0].Status)
	assert.Equal(t, res.ReviewItem.ID, items[0].ID)
}

// countingReviewStore wraps a queue and records how many items pass
// through the interface.
type countingReviewStore struct {
	review.Store
	adds int
}

func (s *countingReviewStore) Add(ctx context.Context, item review.Item) (review.Item, error) {
	s.adds++
	return s.Store.Add(ctx, item)
}

func TestProcessWritesThroughReviewStore(t *testing.T) {
	doc := writeDoc(t, "doc.txt", "hello")
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Category: Tax\nConfidence: 0.75\nReasoning: short."},
	)
	counting := &countingReviewStore{Store: review.NewQueue()}

	eng, err := New([]llm.Provider{mock}, newStore(t),
		WithReviewStore(counting),
		WithThresholds(models.ThresholdConfig{AutoAccept: 0.99, Verification: 0.01, Rejection: 0.001}))
	require.NoError(t, err)

	res, err := eng.Process(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, res.ReviewItem)
	assert.Equal(t, 1, counting.adds)
}

// failingReviewStore rejects every write.
type failingReviewStore struct {
	review.Store
}

func (s failingReviewStore) Add(context.Context, review.Item) (review.Item, error) {
	return review.Item{}, fmt.Errorf("connection refused")
}

func TestProcessSurfacesReviewStoreError(t *testing.T) {
	doc := writeDoc(t, "doc.txt", "hello")
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Category: Tax\nConfidence: 0.75\nReasoning: short."},
	)

	eng, err := New([]llm.Provider{mock}, newStore(t),
		WithReviewStore(failingReviewStore{}),
		WithThresholds(models.ThresholdConfig{AutoAccept: 0.99, Verification: 0.01, Rejection: 0.001}))
	require.NoError(t, err)

	_, err = eng.Process(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestProcessAcceptedSkipsQueue(t *testing.T) {
	doc := writeDoc(t, "invoice.csv", "invoice total amount due payment bill due date")
	mock := llm.NewMockProvider(llm.MockResponse{Text: invoiceResponse})
	queue := review.NewQueue()

	eng, err := New([]llm.Provider{mock}, newStore(t),
		WithReviewStore(queue),
		WithThresholds(models.ThresholdConfig{AutoAccept: 0.5, Verification: 0.3, Rejection: 0.1}))
	require.NoError(t, err)

	res, err := eng.Process(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, models.DispositionAccepted, res.Disposition)
	assert.Nil(t, res.ReviewItem)
	items, err := queue.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	good := writeDoc(t, "good.txt", "invoice total")
	missing := filepath.Join(t.TempDir(), "missing.txt")
	mock := llm.NewMockProvider(llm.MockResponse{Text: invoiceResponse})

	eng, err := New([]llm.Provider{mock}, newStore(t))
	require.NoError(t, err)

	items := eng.ProcessBatch(context.Background(), []string{good, missing})
	require.Len(t, items, 2)

	assert.NoError(t, items[0].Err)
	require.NotNil(t, items[0].Result)
	assert.Equal(t, good, items[0].Result.FileID)

	assert.Error(t, items[1].Err)
	assert.Nil(t, items[1].Result)
}

func TestProcessCalibrationShiftsDisposition(t *testing.T) {
	doc := writeDoc(t, "doc.txt", "hello")
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Category: Tax\nConfidence: 0.8\nReasoning: plain statement without supporting detail."},
	)

	store := newStore(t)
	// Negative history for Tax drags calibrated confidence down by 0.5.
	require.NoError(t, store.Record(context.Background(), models.FeedbackItem{
		FileID:             "earlier.txt",
		PredictedCategory:  models.CategoryTax,
		CorrectedCategory:  models.CategoryInvoices,
		OriginalConfidence: 0.9,
		UserConfidence:     0.4,
	}))

	eng, err := New([]llm.Provider{mock}, newStore(t))
	require.NoError(t, err)
	baseline, err := eng.Process(context.Background(), doc)
	require.NoError(t, err)

	mock2 := llm.NewMockProvider(
		llm.MockResponse{Text: "Category: Tax\nConfidence: 0.8\nReasoning: plain statement without supporting detail."},
	)
	eng2, err := New([]llm.Provider{mock2}, store)
	require.NoError(t, err)
	calibrated, err := eng2.Process(context.Background(), doc)
	require.NoError(t, err)

	assert.InDelta(t, baseline.OverallConfidence, calibrated.OverallConfidence, 1e-9)
	assert.InDelta(t, baseline.CalibratedConfidence-0.5, calibrated.CalibratedConfidence, 1e-9)
}

func TestNewRequiresProvider(t *testing.T) {
	_, err := New(nil, newStore(t))
	assert.Error(t, err)
}
