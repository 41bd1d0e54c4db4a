package model

// QueryVariant is one searchable phrasing of the user's topic. Ordering
// matters only for fallback-attempt sequencing, never for final ranking.
type QueryVariant struct {
	Text     string `json:"text"`
	Strategy string `json:"strategy"` // e.g. "original", "keywords_only", "quoted_phrase"
}

// FallbackStrategy is an alternate query phrasing produced by the intent
// analyzer, tried when the primary query yields insufficient evidence.
type FallbackStrategy struct {
	StrategyType string `json:"strategy_type"`
	Query        string `json:"query"`
}

// Intent is the analyzer's reading of a free-text topic or claim.
type Intent struct {
	OriginalQuery  string             `json:"original_query"`
	Keywords       []string           `json:"keywords"`
	PrimaryKeyword string             `json:"primary_keyword"`
	Language       string             `json:"language"` // ISO 639-1, "en" or "ko"
	Fallbacks      []FallbackStrategy `json:"fallbacks,omitempty"`
}

// RealtimeNeed reports whether a query needs real-time data sources.
type RealtimeNeed struct {
	NeedsRealtimeData bool    `json:"needs_realtime_data"`
	DataType          string  `json:"data_type,omitempty"` // e.g. "weather", "price", "score"
	Confidence        float64 `json:"confidence"`
	Reason            string  `json:"reason,omitempty"`
}
