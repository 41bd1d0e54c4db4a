package validate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/veriscope/veriscope/internal/model"
)

// Relevance adjustments applied by validation. Multiplicative penalties,
// additive trust bonus, clamped to [0,1].
const (
	trustedBonus         = 0.1
	inaccessiblePenalty  = 0.7
	contentPenalty       = 0.5
	hallucinationPenalty = 0.1
	slowResponsePenalty  = 0.95
)

const defaultBatchWorkers = 10

// Validator classifies evidence items as URL-valid, content-valid, or
// hallucinated, and adjusts their relevance scores. With validation
// disabled in config it passes everything through untouched, before any
// network calls are made.
type Validator struct {
	urlChecker     URLChecker
	contentChecker ContentChecker
	cfg            model.ValidationConfig
	workers        int
	logger         *zap.Logger
}

// NewValidator creates a validator.
func NewValidator(urlChecker URLChecker, contentChecker ContentChecker, cfg model.ValidationConfig, workers int, logger *zap.Logger) *Validator {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		urlChecker:     urlChecker,
		contentChecker: contentChecker,
		cfg:            cfg,
		workers:        workers,
		logger:         logger,
	}
}

// Validate classifies a single evidence item.
func (v *Validator) Validate(ctx context.Context, item model.EvidenceItem) model.ValidationOutcome {
	if !v.cfg.Enabled {
		return model.ValidationOutcome{
			Evidence:          item,
			IsValid:           true,
			IsURLValid:        item.URL != "",
			IsContentValid:    true,
			AdjustedRelevance: item.RelevanceScore,
		}
	}

	outcome := model.ValidationOutcome{Evidence: item}

	var urlResult model.URLCheckResult
	if item.URL != "" {
		urlResult = v.urlChecker.CheckURL(ctx, item.URL)
		outcome.IsURLValid = urlResult.IsValid
		outcome.IsTrustedSource = urlResult.IsTrustedDomain
		outcome.IsHallucination = urlResult.IsHallucination
	}

	contentResult := v.contentChecker.CheckContent(ctx, item.URL, item.Excerpt)
	outcome.IsContentValid = contentResult.IsValid

	switch {
	case outcome.IsHallucination:
		outcome.IsValid = false
		outcome.FailureReason = "likely fabricated URL"
	case item.URL == "":
		if v.cfg.Strict {
			outcome.IsValid = false
			outcome.FailureReason = "missing URL"
		} else {
			outcome.IsValid = contentResult.IsValid
			if !outcome.IsValid {
				outcome.FailureReason = contentResult.FailureReason
			}
		}
	case v.cfg.Strict:
		outcome.IsValid = (urlResult.IsValid || urlResult.IsTrustedDomain) && contentResult.IsValid
		if !outcome.IsValid {
			if !contentResult.IsValid {
				outcome.FailureReason = firstReason(contentResult.FailureReason, "failed strict validation")
			} else {
				outcome.FailureReason = firstReason(urlResult.FailureReason, "failed strict validation")
			}
		}
	default:
		outcome.IsValid = urlResult.IsValid || urlResult.IsTrustedDomain || contentResult.IsValid
		if !outcome.IsValid {
			outcome.FailureReason = firstReason(urlResult.FailureReason, contentResult.FailureReason, "failed validation")
		}
	}

	outcome.AdjustedRelevance = v.rescore(item.RelevanceScore, outcome, urlResult, contentResult)

	if !outcome.IsValid {
		v.logger.Debug("evidence rejected",
			zap.String("identity", item.Identity()),
			zap.String("reason", outcome.FailureReason))
	}

	return outcome
}

// rescore applies the validation relevance adjustments.
func (v *Validator) rescore(score float64, outcome model.ValidationOutcome, urlResult model.URLCheckResult, contentResult model.ContentCheckResult) float64 {
	adjusted := score

	if outcome.IsTrustedSource {
		adjusted += trustedBonus
	}
	if outcome.Evidence.URL != "" && !urlResult.IsAccessible && !outcome.IsTrustedSource {
		adjusted *= inaccessiblePenalty
	}
	if !contentResult.IsValid {
		adjusted *= contentPenalty
	}
	if outcome.IsHallucination {
		adjusted *= hallucinationPenalty
	}
	slowMs := v.cfg.SlowResponseMs
	if slowMs <= 0 {
		slowMs = 3000
	}
	if urlResult.ResponseTimeMs > slowMs {
		adjusted *= slowResponsePenalty
	}

	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > 1 {
		adjusted = 1
	}
	return adjusted
}

// ValidateBatch validates items with bounded concurrency, preserving input
// order, and aggregates a report.
func (v *Validator) ValidateBatch(ctx context.Context, items []model.EvidenceItem) ([]model.ValidationOutcome, model.ValidationReport) {
	outcomes := make([]model.ValidationOutcome, len(items))
	if len(items) == 0 {
		return outcomes, buildReport(outcomes)
	}

	if !v.cfg.Enabled {
		for i, item := range items {
			outcomes[i] = v.Validate(ctx, item)
		}
		return outcomes, buildReport(outcomes)
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.workers)

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it model.EvidenceItem) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				outcomes[idx] = model.ValidationOutcome{
					Evidence:          it,
					AdjustedRelevance: it.RelevanceScore,
					FailureReason:     "context cancelled",
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			outcomes[idx] = v.Validate(ctx, it)
		}(i, item)
	}
	wg.Wait()

	return outcomes, buildReport(outcomes)
}

func buildReport(outcomes []model.ValidationOutcome) model.ValidationReport {
	report := model.ValidationReport{
		Total:          len(outcomes),
		FailureReasons: make(map[string]int),
	}
	for _, o := range outcomes {
		if o.IsValid {
			report.Valid++
		} else {
			report.Invalid++
		}
		if o.Evidence.URL != "" && !o.IsURLValid {
			report.URLFailures++
		}
		if !o.IsContentValid {
			report.ContentFailures++
		}
		if o.IsHallucination {
			report.Hallucinations++
		}
		if o.IsTrustedSource {
			report.TrustedSources++
		}
		if o.FailureReason != "" {
			report.FailureReasons[o.FailureReason]++
		}
	}
	if report.Total > 0 {
		report.ValidationRate = float64(report.Valid) / float64(report.Total)
	}
	return report
}

func firstReason(reasons ...string) string {
	for _, r := range reasons {
		if r != "" {
			return r
		}
	}
	return ""
}
