package model

// FusionResult is the merged, deduplicated, score-sorted evidence set
// produced by one fusion run. Immutable after construction.
type FusionResult struct {
	EvidenceItems []EvidenceItem `json:"evidence_items"`
	QueryCount    int            `json:"query_count"`
	SourceCount   int            `json:"source_count"`
	FusionMethod  string         `json:"fusion_method"`
}
