package weight

import (
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/veriscope/veriscope/internal/model"
)

// Hand-tuned weighting constants. The multipliers are deliberate; change
// them through config, not by re-deriving.
const (
	recencyFactor   = 0.3
	qualityFactor   = 0.4
	diversityFactor = 0.3

	defaultRecencyScore = 0.5
)

var (
	isoDateRe     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	englishDateRe = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})\b`)
	koreanDateRe  = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)
)

var englishMonths = map[string]time.Month{
	"January": time.January, "February": time.February, "March": time.March,
	"April": time.April, "May": time.May, "June": time.June, "July": time.July,
	"August": time.August, "September": time.September, "October": time.October,
	"November": time.November, "December": time.December,
}

// Calculator computes per-source trust multipliers from recency, quality,
// and cross-source diversity signals. It is a pure function over its
// input: weights are recomputed fresh per request and never persisted.
type Calculator struct {
	base   map[model.SourceType]float64
	min    float64
	max    float64
	now    func() time.Time
	logger *zap.Logger
}

// NewCalculator creates a calculator from the configured base-weight table
// and clamp bounds.
func NewCalculator(cfg model.WeightConfig, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	min, max := cfg.Min, cfg.Max
	if min <= 0 {
		min = 0.5
	}
	if max <= min {
		max = 2.0
	}
	return &Calculator{
		base:   cfg.Base,
		min:    min,
		max:    max,
		now:    time.Now,
		logger: logger,
	}
}

// ComputeWeights returns a trust multiplier per source type, clamped to
// [min, max]. Empty input returns the static base-weight table unchanged.
func (c *Calculator) ComputeWeights(evidenceBySource map[model.SourceType][]model.EvidenceItem) map[model.SourceType]float64 {
	weights := make(map[model.SourceType]float64, len(c.base))
	for st, w := range c.base {
		weights[st] = w
	}
	if len(evidenceBySource) == 0 {
		return weights
	}

	recency := make(map[model.SourceType]float64)
	quality := make(map[model.SourceType]float64)
	diversity := make(map[model.SourceType]float64)

	var recencySum, qualitySum float64
	var present int
	for st, items := range evidenceBySource {
		if len(items) == 0 {
			continue
		}
		recency[st] = c.recencyScore(st, items)
		quality[st] = c.qualityScore(items)
		diversity[st] = diversityScore(items)
		recencySum += recency[st]
		qualitySum += quality[st]
		present++
	}
	if present == 0 {
		return weights
	}

	// Averages are computed once across all source types in the request
	// so a source's boost reflects how it compares to its peers.
	avgRecency := recencySum / float64(present)
	avgQuality := qualitySum / float64(present)

	for st := range recency {
		base, ok := c.base[st]
		if !ok {
			base = 1.0
		}

		w := base *
			(1 + (recency[st]-avgRecency)*recencyFactor) *
			(1 + (quality[st]-avgQuality)*qualityFactor) *
			(1 + diversity[st]*diversityFactor)

		weights[st] = clamp(w, c.min, c.max)

		c.logger.Debug("source weight computed",
			zap.String("source_type", string(st)),
			zap.Float64("recency", recency[st]),
			zap.Float64("quality", quality[st]),
			zap.Float64("diversity", diversity[st]),
			zap.Float64("weight", weights[st]))
	}

	return weights
}

// recencyScore averages 1/(1+hoursAgo/24) over the best-effort published
// time of each item.
func (c *Calculator) recencyScore(st model.SourceType, items []model.EvidenceItem) float64 {
	now := c.now()

	var sum float64
	var scored int
	for _, item := range items {
		published, ok := extractPublishedTime(item.Excerpt)
		if !ok {
			published = heuristicPublishedTime(st, now)
		}
		hoursAgo := now.Sub(published).Hours()
		if hoursAgo < 0 {
			hoursAgo = 0
		}
		sum += 1 / (1 + hoursAgo/24)
		scored++
	}
	if scored == 0 {
		return defaultRecencyScore
	}
	return sum / float64(scored)
}

// qualityScore averages a per-item heuristic: relevance, excerpt length in
// a useful band, and presence of URL and source name. Capped at 1.0.
func (c *Calculator) qualityScore(items []model.EvidenceItem) float64 {
	var sum float64
	for _, item := range items {
		var q float64
		if item.RelevanceScore > 0 {
			q += item.RelevanceScore * 0.6
		}
		n := len(item.Excerpt)
		switch {
		case n >= 100 && n <= 1000:
			q += 0.2
		case n > 50 && n < 2000:
			q += 0.1
		}
		if item.URL != "" {
			q += 0.1
		}
		if item.SourceName != "" {
			q += 0.1
		}
		if q > 1.0 {
			q = 1.0
		}
		sum += q
	}
	return sum / float64(len(items))
}

// diversityScore is the fraction of distinct URLs among a source's items.
// A single item gives no diversity signal.
func diversityScore(items []model.EvidenceItem) float64 {
	if len(items) <= 1 {
		return 0
	}
	distinct := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.URL != "" {
			distinct[item.URL] = struct{}{}
		}
	}
	return float64(len(distinct)) / float64(len(items))
}

// extractPublishedTime pulls the first recognizable date out of an excerpt.
// ISO dates, English month-name dates, and Korean dates are recognized.
func extractPublishedTime(excerpt string) (time.Time, bool) {
	if m := isoDateRe.FindStringSubmatch(excerpt); m != nil {
		if t, err := time.Parse("2006-01-02", m[0]); err == nil {
			return t, true
		}
	}
	if m := englishDateRe.FindStringSubmatch(excerpt); m != nil {
		if t, err := time.Parse("January 2 2006", m[1]+" "+m[2]+" "+m[3]); err == nil {
			return t, true
		}
	}
	if m := koreanDateRe.FindStringSubmatch(excerpt); m != nil {
		if t, err := time.Parse("2006-1-2", m[1]+"-"+m[2]+"-"+m[3]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// heuristicPublishedTime assigns a source-type-specific default age when
// no date can be extracted.
func heuristicPublishedTime(st model.SourceType, now time.Time) time.Time {
	switch st {
	case model.SourceRealtime:
		return now
	case model.SourceNews:
		return now.Add(-24 * time.Hour)
	case model.SourceAcademic:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -7)
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
