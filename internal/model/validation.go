package model

// URLCheckResult is the outcome of a single URL liveness check.
type URLCheckResult struct {
	IsValid         bool   `json:"is_valid"`
	IsAccessible    bool   `json:"is_accessible"`
	IsTrustedDomain bool   `json:"is_trusted_domain"`
	IsHallucination bool   `json:"is_hallucination"` // Fabricated URL with no real backing
	FailureReason   string `json:"failure_reason,omitempty"`
	ResponseTimeMs  int64  `json:"response_time_ms"`
	StatusCode      int    `json:"status_code,omitempty"`
}

// ContentCheckResult is the outcome of checking excerpt text against its URL.
type ContentCheckResult struct {
	IsValid       bool   `json:"is_valid"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// ValidationOutcome annotates one evidence item with its validation verdict
// and the relevance score adjusted by validation penalties and bonuses.
type ValidationOutcome struct {
	Evidence          EvidenceItem `json:"evidence"`
	IsValid           bool         `json:"is_valid"`
	IsURLValid        bool         `json:"is_url_valid"`
	IsContentValid    bool         `json:"is_content_valid"`
	IsHallucination   bool         `json:"is_hallucination"`
	IsTrustedSource   bool         `json:"is_trusted_source"`
	AdjustedRelevance float64      `json:"adjusted_relevance"`
	FailureReason     string       `json:"failure_reason,omitempty"`
}

// ValidationReport aggregates a batch of validation outcomes.
type ValidationReport struct {
	Total           int            `json:"total"`
	Valid           int            `json:"valid"`
	Invalid         int            `json:"invalid"`
	URLFailures     int            `json:"url_failures"`
	ContentFailures int            `json:"content_failures"`
	Hallucinations  int            `json:"hallucinations"`
	TrustedSources  int            `json:"trusted_sources"`
	FailureReasons  map[string]int `json:"failure_reasons,omitempty"`
	ValidationRate  float64        `json:"validation_rate"` // valid/total, 0 when empty
}
