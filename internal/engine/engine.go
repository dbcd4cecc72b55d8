// Package engine orchestrates the classification workflow: prompt the
// configured model providers, parse their output, score a confidence
// vector, calibrate it against feedback history, and route the result to
// a disposition.
//
// With a single provider the engine runs a two-stage workflow: a quick
// first pass, escalated to a detailed evidence-scoring pass when the
// first confidence falls below the escalation threshold. With two or
// more providers it instead fans one attempt out per provider and merges
// them by weighted consensus; the detailed pass never runs in that mode.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/doctriage/doctriage/internal/calibration"
	"github.com/doctriage/doctriage/internal/consensus"
	"github.com/doctriage/doctriage/internal/features"
	"github.com/doctriage/doctriage/internal/llm"
	"github.com/doctriage/doctriage/internal/parser"
	"github.com/doctriage/doctriage/internal/review"
	"github.com/doctriage/doctriage/internal/routing"
	"github.com/doctriage/doctriage/internal/scoring"
	"github.com/doctriage/doctriage/pkg/models"
)

const (
	// defaultEscalationThreshold is the first-pass confidence below which
	// the detailed pass runs.
	defaultEscalationThreshold = 0.7

	// detailedConfidenceCap bounds what the detailed pass may report. The
	// evidence-scoring prompt invites overconfident answers; there is no
	// corresponding floor.
	detailedConfidenceCap = 0.95
)

// Result is the complete outcome of classifying one document.
type Result struct {
	FileID               string                       `json:"file_id"`
	Attempt              models.ClassificationAttempt `json:"attempt"`
	Consensus            *models.ConsensusResult      `json:"consensus,omitempty"`
	Vector               models.ConfidenceVector      `json:"vector"`
	OverallConfidence    float64                      `json:"overall_confidence"`
	CalibratedConfidence float64                      `json:"calibrated_confidence"`
	Disposition          models.Disposition           `json:"disposition"`
	Features             models.DocumentFeatures      `json:"features"`
	ReviewItem           *review.Item                 `json:"review_item,omitempty"`
}

// BatchItem pairs one document reference with its result or error.
type BatchItem struct {
	Ref    string  `json:"ref"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithThresholds sets the disposition thresholds.
func WithThresholds(cfg models.ThresholdConfig) Option {
	return func(e *Engine) { e.thresholds = cfg }
}

// WithEscalationThreshold sets the first-pass confidence below which the
// detailed pass runs.
func WithEscalationThreshold(t float64) Option {
	return func(e *Engine) { e.escalationThreshold = t }
}

// WithFeatureSource replaces the document feature source.
func WithFeatureSource(s features.Source) Option {
	return func(e *Engine) { e.source = s }
}

// WithReviewStore enqueues results routed to review or verification in
// the given store.
func WithReviewStore(s review.Store) Option {
	return func(e *Engine) { e.reviews = s }
}

// Engine runs the classification workflow.
type Engine struct {
	providers           []llm.Provider
	parser              *parser.Parser
	scorer              *scoring.Scorer
	source              features.Source
	calibrator          *calibration.Store
	reviews             review.Store
	thresholds          models.ThresholdConfig
	escalationThreshold float64
}

// New creates an engine over the given providers and calibration store.
// At least one provider is required.
func New(providers []llm.Provider, store *calibration.Store, opts ...Option) (*Engine, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("engine requires at least one provider")
	}
	e := &Engine{
		providers:           providers,
		parser:              parser.New(),
		scorer:              scoring.NewScorer(),
		source:              features.NewFileSource(),
		calibrator:          store,
		thresholds:          models.DefaultThresholds(),
		escalationThreshold: defaultEscalationThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Thresholds returns the disposition thresholds in effect.
func (e *Engine) Thresholds() models.ThresholdConfig {
	return e.thresholds
}

// Categorize runs the first pass against the primary provider.
func (e *Engine) Categorize(ctx context.Context, ref string) (models.ClassificationAttempt, error) {
	feats, err := e.source.Features(ctx, ref)
	if err != nil {
		return models.ClassificationAttempt{}, fmt.Errorf("extract features for %s: %w", ref, err)
	}
	return e.classify(ctx, e.providers[0], firstPassPrompt(ref, feats), models.StageFirst)
}

// CategorizeDetailed runs the detailed evidence-scoring pass, seeded with
// the category the first pass produced. The reported confidence is capped;
// the result replaces the first pass rather than blending with it.
func (e *Engine) CategorizeDetailed(ctx context.Context, ref string, initial models.Category) (models.ClassificationAttempt, error) {
	feats, err := e.source.Features(ctx, ref)
	if err != nil {
		return models.ClassificationAttempt{}, fmt.Errorf("extract features for %s: %w", ref, err)
	}
	return e.categorizeDetailed(ctx, ref, feats, initial)
}

func (e *Engine) categorizeDetailed(ctx context.Context, ref string, feats models.DocumentFeatures, initial models.Category) (models.ClassificationAttempt, error) {
	attempt, err := e.classify(ctx, e.providers[0], detailedPrompt(ref, feats, initial), models.StageDetailed)
	if err != nil {
		return attempt, err
	}
	if attempt.AIReportedConfidence > detailedConfidenceCap {
		attempt.AIReportedConfidence = detailedConfidenceCap
	}
	return attempt, nil
}

func (e *Engine) classify(ctx context.Context, p llm.Provider, prompt string, stage models.Stage) (models.ClassificationAttempt, error) {
	raw, err := p.Classify(ctx, prompt)
	if err != nil {
		return models.ClassificationAttempt{}, fmt.Errorf("classify with %s: %w", p.ModelID(), err)
	}
	attempt := e.parser.Parse(raw)
	attempt.Model = p.ModelID()
	attempt.Stage = stage
	return attempt, nil
}

// Process classifies one document end to end and routes it.
func (e *Engine) Process(ctx context.Context, ref string) (*Result, error) {
	feats, err := e.source.Features(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("extract features for %s: %w", ref, err)
	}

	res := &Result{FileID: ref, Features: feats}

	if len(e.providers) >= 2 {
		if err := e.processConsensus(ctx, ref, feats, res); err != nil {
			return nil, err
		}
	} else {
		if err := e.processStaged(ctx, ref, feats, res); err != nil {
			return nil, err
		}
	}

	res.OverallConfidence = res.Vector.Overall()
	res.CalibratedConfidence = e.calibrator.Calibrate(res.Attempt.Category, res.OverallConfidence)
	res.Disposition = routing.Route(res.CalibratedConfidence, e.thresholds)

	if e.reviews != nil && needsReview(res.Disposition) {
		item, err := e.reviews.Add(ctx, review.Item{
			FileID:     ref,
			Category:   res.Attempt.Category,
			Confidence: res.CalibratedConfidence,
			Reasoning:  res.Attempt.Reasoning,
			Dispo:      res.Disposition,
		})
		if err != nil {
			return nil, fmt.Errorf("enqueue review for %s: %w", ref, err)
		}
		res.ReviewItem = &item
	}
	return res, nil
}

// processStaged runs the single-provider two-stage workflow on res.
func (e *Engine) processStaged(ctx context.Context, ref string, feats models.DocumentFeatures, res *Result) error {
	attempt, err := e.classify(ctx, e.providers[0], firstPassPrompt(ref, feats), models.StageFirst)
	if err != nil {
		return err
	}

	if attempt.AIReportedConfidence < e.escalationThreshold {
		// A failed detailed pass degrades to the first-pass result
		// instead of failing the document. The low first-pass
		// confidence routes it to review anyway.
		if detailed, err := e.categorizeDetailed(ctx, ref, feats, attempt.Category); err == nil {
			attempt = detailed
		}
	}

	res.Attempt = attempt
	res.Vector = e.scorer.Score(scoring.Input{
		AIReported:  attempt.AIReportedConfidence,
		Category:    attempt.Category,
		RawResponse: attempt.RawResponse,
		Reasoning:   attempt.Reasoning,
		Features:    feats,
	})
	return nil
}

// processConsensus fans one first-pass attempt out per provider and
// merges the successes by weighted vote. Provider failures shrink the
// vote; only a full wipe-out is an error.
func (e *Engine) processConsensus(ctx context.Context, ref string, feats models.DocumentFeatures, res *Result) error {
	prompt := firstPassPrompt(ref, feats)
	attempts := make([]*models.ClassificationAttempt, len(e.providers))
	errs := make([]error, len(e.providers))

	var wg sync.WaitGroup
	for i, p := range e.providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := e.classify(ctx, p, prompt, models.StageFirst)
			if err != nil {
				errs[i] = err
				return
			}
			attempts[i] = &a
		}()
	}
	wg.Wait()

	var ok []models.ClassificationAttempt
	for _, a := range attempts {
		if a != nil {
			ok = append(ok, *a)
		}
	}
	if len(ok) == 0 {
		return fmt.Errorf("all providers failed for %s: %w", ref, errs[0])
	}

	combined := consensus.Combine(ok)
	res.Consensus = &combined

	// The representative attempt backs the confidence vector: the first
	// attempt that voted for the winning category, with the reported
	// confidence replaced by the consensus confidence.
	rep := ok[0]
	for _, a := range ok {
		if a.Category == combined.Category {
			rep = a
			break
		}
	}
	rep.Category = combined.Category
	res.Attempt = rep
	res.Vector = e.scorer.Score(scoring.Input{
		AIReported:  combined.ConsensusConfidence,
		Category:    combined.Category,
		RawResponse: rep.RawResponse,
		Reasoning:   rep.Reasoning,
		Features:    feats,
	})
	return nil
}

// ProcessBatch classifies every document, isolating per-document
// failures. The returned slice is in input order; a failed document
// carries its error and a nil result.
func (e *Engine) ProcessBatch(ctx context.Context, refs []string) []BatchItem {
	out := make([]BatchItem, len(refs))
	for i, ref := range refs {
		res, err := e.Process(ctx, ref)
		out[i] = BatchItem{Ref: ref, Result: res, Err: err}
	}
	return out
}

func needsReview(d models.Disposition) bool {
	return d == models.DispositionReview || d == models.DispositionNeedsVerification
}
