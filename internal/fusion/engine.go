package fusion

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/veriscope/veriscope/internal/model"
	"github.com/veriscope/veriscope/internal/weight"
)

// FusionMethodRRF names the rank-aggregation method in FusionResult.
const FusionMethodRRF = "reciprocal_rank_fusion"

// ErrNoEvidence is the terminal empty-evidence state: every source and
// every fallback variant came back empty. Callers must treat this as a
// first-class outcome (the "no results" report path), not as a failure.
var ErrNoEvidence = errors.New("zero evidence collected after all fallback attempts")

// ErrNoSources means no evidence sources are registered at all. This is
// the one fatal configuration error; it is surfaced at startup.
var ErrNoSources = errors.New("no evidence sources registered")

// ranking is one (query variant, source) ranked list. Ephemeral; exists
// only during fusion.
type ranking struct {
	variant    model.QueryVariant
	sourceID   string
	sourceType model.SourceType
	items      []model.EvidenceItem
}

// Engine fans query variants out across evidence sources and merges the
// ranked lists with Reciprocal Rank Fusion, weighted by the per-request
// source trust multipliers.
type Engine struct {
	registry   *Registry
	calculator *weight.Calculator
	cfg        model.FusionConfig
	fanOut     int
	logger     *zap.Logger
}

// NewEngine creates a fusion engine.
func NewEngine(registry *Registry, calculator *weight.Calculator, cfg model.FusionConfig, fanOut int, logger *zap.Logger) *Engine {
	if fanOut <= 0 {
		fanOut = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		registry:   registry,
		calculator: calculator,
		cfg:        cfg,
		fanOut:     fanOut,
		logger:     logger,
	}
}

// Fuse runs the query variants across the available sources and fuses the
// results. The first variant is the primary query; the rest are fallback
// phrasings tried in order only when the primary yields too little.
//
// A failing (variant, source) pair contributes an empty list and never
// fails the fusion. The only error conditions are an empty registry and
// ErrNoEvidence.
func (e *Engine) Fuse(ctx context.Context, variants []model.QueryVariant, language string) (*model.FusionResult, error) {
	if e.registry.Len() == 0 {
		return nil, ErrNoSources
	}
	if len(variants) == 0 {
		return nil, ErrNoEvidence
	}

	if e.cfg.CollectionDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.CollectionDeadline)
		defer cancel()
	}

	sources := e.registry.Available()

	// Phase 1: primary variant across all sources.
	rankings := e.fetchAll(ctx, variants[:1], sources, language)
	fused := e.rrf(rankings)

	// Fallback rescue: if the primary variant alone yields too few fused
	// items, try additional variants in order until enough items are
	// collected or variants run out. Sequential, so worst-case latency
	// stays bounded.
	variantsUsed := 1
	if len(fused) < e.cfg.MinPrimaryItems {
		maxFallbacks := e.cfg.MaxFallbackVariants
		for i := 1; i < len(variants) && i <= maxFallbacks; i++ {
			if ctx.Err() != nil {
				break
			}
			e.logger.Info("trying fallback query variant",
				zap.String("strategy", variants[i].Strategy),
				zap.Int("fused_so_far", len(fused)))

			rankings = append(rankings, e.fetchAll(ctx, variants[i:i+1], sources, language)...)
			fused = e.rrf(rankings)
			variantsUsed++
			if len(fused) >= e.cfg.TargetItems {
				break
			}
		}
	}

	if e.cfg.MaxItems > 0 && len(fused) > e.cfg.MaxItems {
		fused = fused[:e.cfg.MaxItems]
	}

	// Always consult the trusted base sources for the original query,
	// regardless of fusion outcome. Merged after the output cap so
	// truncation never drops trusted evidence.
	baseItems := e.fetchBase(ctx, variants[0].Text, language)
	fused = mergeBase(fused, baseItems)

	if len(fused) == 0 {
		return nil, ErrNoEvidence
	}

	contributing := make(map[string]struct{})
	for _, r := range rankings {
		if len(r.items) > 0 {
			contributing[r.sourceID] = struct{}{}
		}
	}

	return &model.FusionResult{
		EvidenceItems: fused,
		QueryCount:    variantsUsed,
		SourceCount:   len(contributing),
		FusionMethod:  FusionMethodRRF,
	}, nil
}

// fetchAll fetches every (variant, source) pair concurrently, bounded by
// the fan-out limit, each pair under its own timeout. Completion order
// never affects the result: rankings come back in deterministic
// (variant, source) order.
func (e *Engine) fetchAll(ctx context.Context, variants []model.QueryVariant, sources []EvidenceSource, language string) []ranking {
	rankings := make([]ranking, len(variants)*len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fanOut)

	for vi, variant := range variants {
		for si, source := range sources {
			idx := vi*len(sources) + si
			variant, source := variant, source
			g.Go(func() error {
				rankings[idx] = ranking{
					variant:    variant,
					sourceID:   source.SourceID(),
					sourceType: source.SourceType(),
					items:      e.fetchPair(gctx, variant, source, language),
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	return rankings
}

// fetchPair fetches one ranked list. Failures are logged and yield an
// empty list.
func (e *Engine) fetchPair(ctx context.Context, variant model.QueryVariant, source EvidenceSource, language string) []model.EvidenceItem {
	if e.cfg.PairTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.PairTimeout)
		defer cancel()
	}

	items, err := source.FetchEvidence(ctx, variant.Text, language)
	if err != nil {
		e.logger.Warn("evidence source failed",
			zap.String("source", source.SourceID()),
			zap.String("strategy", variant.Strategy),
			zap.Error(err))
		return nil
	}

	// Items with empty excerpts must never reach output. Copied rather
	// than filtered in place: the source may hand out a shared slice.
	out := make([]model.EvidenceItem, 0, len(items))
	for _, item := range items {
		if item.Excerpt == "" {
			continue
		}
		if item.SourceType == "" {
			item.SourceType = source.SourceType()
		}
		out = append(out, item)
	}
	return out
}

// rrf merges the ranked lists with Reciprocal Rank Fusion:
//
//	score(e) = sum over lists L containing e at rank r of w(source(L)) / (k + r)
//
// Items present in more lists, or ranked higher, score higher, rewarding
// cross-source corroboration. Given identical rankings and weights the
// output order is identical every time.
func (e *Engine) rrf(rankings []ranking) []model.EvidenceItem {
	k := e.cfg.RRFK
	if k <= 0 {
		k = 60
	}

	weights := e.calculator.ComputeWeights(groupBySourceType(rankings))

	scores := make(map[string]float64)
	best := make(map[string]model.EvidenceItem) // longest excerpt wins dedupe

	for _, r := range rankings {
		w, ok := weights[r.sourceType]
		if !ok {
			w = 1.0
		}
		seen := make(map[string]struct{}, len(r.items))
		for rank, item := range r.items {
			id := item.Identity()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			scores[id] += w / float64(k+rank+1)
			if existing, ok := best[id]; !ok || len(item.Excerpt) > len(existing.Excerpt) {
				best[id] = item
			}
		}
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	// Descending score; identity breaks ties so ordering is deterministic.
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})

	out := make([]model.EvidenceItem, 0, len(ids))
	for _, id := range ids {
		item := best[id]
		// Normalized fused score becomes the item's relevance baseline.
		item.RelevanceScore = normalizeRRF(scores[id], k)
		out = append(out, item)
	}
	return out
}

// fetchBase queries the always-trusted base sources concurrently for the
// original topic.
func (e *Engine) fetchBase(ctx context.Context, query, language string) []model.EvidenceItem {
	baseSources := e.registry.BaseSources()
	if len(baseSources) == 0 {
		return nil
	}

	var mu sync.Mutex
	var items []model.EvidenceItem

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fanOut)
	for _, source := range baseSources {
		source := source
		g.Go(func() error {
			fetched := e.fetchPair(gctx, model.QueryVariant{Text: query, Strategy: "base"}, source, language)
			mu.Lock()
			items = append(items, fetched...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore > items[j].RelevanceScore
	})
	return items
}

// mergeBase appends base-source items that are not already present.
func mergeBase(fused, base []model.EvidenceItem) []model.EvidenceItem {
	seen := make(map[string]struct{}, len(fused))
	for _, item := range fused {
		seen[item.Identity()] = struct{}{}
	}
	for _, item := range base {
		id := item.Identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		fused = append(fused, item)
	}
	return fused
}

// normalizeRRF maps an RRF score into (0, 1]. A score of weight/(k+1)
// (single top-ranked hit at weight 1.0) lands around 0.5; corroborated
// items climb toward 1.
func normalizeRRF(score float64, k int) float64 {
	top := 1.0 / float64(k+1)
	v := score / (2 * top)
	if v > 1 {
		v = 1
	}
	if v <= 0 {
		v = 0.01
	}
	return v
}

func groupBySourceType(rankings []ranking) map[model.SourceType][]model.EvidenceItem {
	grouped := make(map[model.SourceType][]model.EvidenceItem)
	for _, r := range rankings {
		if len(r.items) == 0 {
			continue
		}
		grouped[r.sourceType] = append(grouped[r.sourceType], r.items...)
	}
	return grouped
}
