// Package engine orchestrates the full verification pipeline: intent
// analysis, evidence fusion, validation, claim verification, credibility
// assessment, and narrative synthesis, reported as a progress-event
// stream.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/veriscope/veriscope/internal/fusion"
	"github.com/veriscope/veriscope/internal/intent"
	"github.com/veriscope/veriscope/internal/llm"
	"github.com/veriscope/veriscope/internal/model"
	"github.com/veriscope/veriscope/internal/validate"
	"github.com/veriscope/veriscope/internal/verify"
	"github.com/veriscope/veriscope/internal/worker"
)

// ErrNoSourcesRegistered is the only fatal configuration error: an engine
// with nothing to query cannot serve any request.
var ErrNoSourcesRegistered = errors.New("no evidence sources registered")

// Engine wires the pipeline stages together. One Engine serves many
// concurrent requests; all per-request state lives on the stack of
// AnalyzeAndVerify.
type Engine struct {
	cfg       model.Config
	analyzer  intent.Analyzer
	registry  *fusion.Registry
	fuser     *fusion.Engine
	validator *validate.Validator
	verifier  *verify.Verifier
	chain     *llm.Chain
	logger    *zap.Logger
}

// New assembles an engine. It fails fast when the registry is empty; every
// other failure mode degrades to partial or templated output per request.
func New(
	cfg model.Config,
	analyzer intent.Analyzer,
	registry *fusion.Registry,
	fuser *fusion.Engine,
	validator *validate.Validator,
	verifier *verify.Verifier,
	chain *llm.Chain,
	logger *zap.Logger,
) (*Engine, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, ErrNoSourcesRegistered
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		analyzer:  analyzer,
		registry:  registry,
		fuser:     fuser,
		validator: validator,
		verifier:  verifier,
		chain:     chain,
		logger:    logger,
	}, nil
}

// AnalyzeAndVerify runs the full pipeline for one topic and claim set.
// It returns immediately with an event channel; the pipeline runs in the
// background and closes the channel after the terminal complete (or
// error) event. The stream always ends with user-facing content - an
// empty evidence set or a total synthesis failure produces templated
// output, never a bare error.
func (e *Engine) AnalyzeAndVerify(ctx context.Context, topic string, claims []string) (<-chan model.Event, error) {
	if topic == "" {
		return nil, errors.New("topic must not be empty")
	}

	events := make(chan model.Event, 16)
	go func() {
		defer close(events)
		e.run(ctx, topic, claims, events)
	}()
	return events, nil
}

func (e *Engine) run(ctx context.Context, topic string, claims []string, events chan<- model.Event) {
	start := time.Now()

	emit := func(eventType model.EventType, phase, message string, payload any) {
		select {
		case events <- model.Event{
			ID:        uuid.NewString(),
			Type:      eventType,
			Phase:     phase,
			Message:   message,
			Payload:   payload,
			CreatedAt: time.Now(),
		}:
		case <-ctx.Done():
		}
	}

	// Intent analysis.
	emit(model.EventStatus, "analysis", "Analyzing topic", nil)
	queryIntent := e.analyzer.Analyze(topic)
	variants := buildVariants(queryIntent)

	// Evidence collection and fusion.
	emit(model.EventStatus, "evidence", "Collecting evidence", nil)
	fusionResult, err := e.fuser.Fuse(ctx, variants, queryIntent.Language)
	switch {
	case errors.Is(err, fusion.ErrNoSources):
		emit(model.EventError, "evidence", err.Error(), nil)
		return
	case errors.Is(err, fusion.ErrNoEvidence):
		e.completeEmpty(topic, queryIntent.Language, emit)
		return
	case err != nil:
		// Fusion has no other error modes today; treat unknown ones as
		// the empty-evidence case so the user still gets an answer.
		e.logger.Error("fusion failed", zap.String("topic", topic), zap.Error(err))
		e.completeEmpty(topic, queryIntent.Language, emit)
		return
	}

	emit(model.EventEvidence, "evidence",
		fmt.Sprintf("Collected %d evidence items from %d sources", len(fusionResult.EvidenceItems), fusionResult.SourceCount),
		fusionResult)

	// Validation filters fabricated or dead evidence and rescores the rest.
	evidence, validationReport := e.validateEvidence(ctx, fusionResult.EvidenceItems)
	if len(evidence) == 0 {
		// Everything was filtered out; report it as the empty case.
		e.completeEmpty(topic, queryIntent.Language, emit)
		return
	}
	emit(model.EventStatus, "validation",
		fmt.Sprintf("%d of %d evidence items passed validation", validationReport.Valid, validationReport.Total),
		validationReport)

	// Claim verification, fanned out over the worker pool.
	results := e.verifyClaims(ctx, claims, evidence, queryIntent)
	for _, r := range results {
		emit(model.EventVerification, "verification", "", r)
	}

	assessment := verify.Assess(results)
	emit(model.EventAssessment, "assessment",
		fmt.Sprintf("Overall credibility %.2f (%s risk)", assessment.OverallScore, assessment.RiskLevel),
		assessment)

	// Narrative synthesis with deterministic fallback.
	narrative, narrativeSource := e.synthesize(ctx, topic, queryIntent.Language, evidence, results, assessment, emit)

	report := model.Report{
		Topic:           topic,
		GeneratedAt:     time.Now(),
		Evidence:        evidence,
		Validation:      validationReport,
		Verifications:   results,
		Assessment:      &assessment,
		Narrative:       narrative,
		NarrativeSource: narrativeSource,
	}
	e.logger.Info("pipeline complete",
		zap.String("topic", topic),
		zap.Int("evidence", len(evidence)),
		zap.Int("claims", len(results)),
		zap.String("narrative_source", narrativeSource),
		zap.Duration("elapsed", time.Since(start)))
	emit(model.EventComplete, "complete", narrative, report)
}

// completeEmpty terminates the stream for the empty-evidence case: an
// evidence event with an empty list, then a complete event carrying the
// no-results template with the literal topic.
func (e *Engine) completeEmpty(topic, language string, emit func(model.EventType, string, string, any)) {
	emit(model.EventEvidence, "evidence", "No evidence collected", &model.FusionResult{
		EvidenceItems: []model.EvidenceItem{},
		FusionMethod:  fusion.FusionMethodRRF,
	})

	narrative := llm.NoResultsReport(topic, language)
	emit(model.EventComplete, "complete", narrative, model.Report{
		Topic:           topic,
		GeneratedAt:     time.Now(),
		Evidence:        []model.EvidenceItem{},
		Narrative:       narrative,
		NarrativeSource: "fallback",
	})
}

func (e *Engine) validateEvidence(ctx context.Context, items []model.EvidenceItem) ([]model.EvidenceItem, model.ValidationReport) {
	if e.validator == nil {
		return items, model.ValidationReport{Total: len(items), Valid: len(items), ValidationRate: 1}
	}

	outcomes, report := e.validator.ValidateBatch(ctx, items)
	valid := make([]model.EvidenceItem, 0, len(outcomes))
	for _, outcome := range outcomes {
		if !outcome.IsValid {
			e.logger.Debug("evidence filtered out",
				zap.String("url", outcome.Evidence.URL),
				zap.String("reason", outcome.FailureReason))
			continue
		}
		item := outcome.Evidence
		item.RelevanceScore = outcome.AdjustedRelevance
		valid = append(valid, item)
	}
	return valid, report
}

// verifyClaims checks every claim concurrently and returns results in
// input claim order.
func (e *Engine) verifyClaims(ctx context.Context, claims []string, evidence []model.EvidenceItem, queryIntent model.Intent) []model.VerificationResult {
	if len(claims) == 0 {
		return nil
	}

	type indexed struct {
		i      int
		result model.VerificationResult
	}

	workers := e.cfg.Concurrency.ClaimWorkers
	if workers <= 0 {
		workers = 4
	}
	pool := worker.NewPool[indexed](ctx, workers)
	for i, claim := range claims {
		i, claim := i, claim
		pool.Submit(func(context.Context) indexed {
			return indexed{i: i, result: e.verifier.Verify(claim, evidence, queryIntent.PrimaryKeyword, queryIntent.Language)}
		})
	}
	collected := pool.Wait()

	sort.Slice(collected, func(a, b int) bool { return collected[a].i < collected[b].i })
	results := make([]model.VerificationResult, len(collected))
	for i, c := range collected {
		results[i] = c.result
	}
	return results
}

// synthesize streams the narrative from the provider chain, emitting
// ai_synthesis chunk events. When no provider is enabled the phase is
// skipped entirely; when all fail, the deterministic fallback report is
// used instead. Either way the caller receives non-empty narrative text.
func (e *Engine) synthesize(
	ctx context.Context,
	topic, language string,
	evidence []model.EvidenceItem,
	results []model.VerificationResult,
	assessment model.CredibilityAssessment,
	emit func(model.EventType, string, string, any),
) (string, string) {
	if e.chain == nil || e.chain.EnabledCount() == 0 {
		return llm.FallbackReport(topic, results, assessment), "fallback"
	}

	prompt := llm.BuildPrompt(llm.PromptInput{
		Topic:      topic,
		Language:   language,
		Evidence:   evidence,
		Results:    results,
		Assessment: assessment,
	})

	narrative, provider, err := e.chain.Synthesize(ctx, prompt, func(chunk string) {
		emit(model.EventAISynthesis, "ai_synthesis", chunk, nil)
	})
	if err != nil {
		e.logger.Warn("synthesis chain exhausted, using fallback report", zap.Error(err))
		return llm.FallbackReport(topic, results, assessment), "fallback"
	}
	return narrative, provider
}

// buildVariants turns the analyzed intent into the ordered query-variant
// list: the original phrasing first, then the fallback ladder.
func buildVariants(queryIntent model.Intent) []model.QueryVariant {
	variants := []model.QueryVariant{{Text: queryIntent.OriginalQuery, Strategy: "original"}}
	for _, f := range queryIntent.Fallbacks {
		variants = append(variants, model.QueryVariant{Text: f.Query, Strategy: f.StrategyType})
	}
	return variants
}
