package model

import (
	"fmt"
	"hash/fnv"
)

// SourceType classifies where a piece of evidence came from
type SourceType string

const (
	SourceEncyclopedia SourceType = "encyclopedia" // Encyclopedia summary/search APIs
	SourceAcademic     SourceType = "academic"     // Academic databases, paper indexes
	SourceNews         SourceType = "news"         // News search APIs
	SourceRealtime     SourceType = "realtime"     // Real-time web search
	SourceWeb          SourceType = "web"          // Generic crawled pages
)

// Stance classifies an evidence item relative to a claim
type Stance string

const (
	StanceSupport    Stance = "support"
	StanceContradict Stance = "contradict"
	StanceNeutral    Stance = "neutral"
)

// EvidenceItem is one excerpt of text plus source metadata, used as
// support or contradiction for a claim.
type EvidenceItem struct {
	SourceType     SourceType `json:"source_type"`
	SourceName     string     `json:"source_name,omitempty"` // Human-readable source name
	URL            string     `json:"url,omitempty"`
	Excerpt        string     `json:"excerpt"`
	RelevanceScore float64    `json:"relevance_score"` // 0..1
	Stance         Stance     `json:"stance,omitempty"`
}

// Identity returns the deduplication key for an item: the URL when
// present, otherwise a hash of the excerpt text.
func (e EvidenceItem) Identity() string {
	if e.URL != "" {
		return e.URL
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(e.Excerpt))
	return fmt.Sprintf("excerpt:%x", h.Sum64())
}

// TrustedSource is a statically configured always-credible source.
// The table is loaded from configuration and read-only at request time.
type TrustedSource struct {
	ID          string  `json:"id" yaml:"id"`
	DisplayName string  `json:"display_name" yaml:"display_name"`
	BaseURL     string  `json:"base_url" yaml:"base_url"` // URL template, %s = query
	TrustScore  float64 `json:"trust_score" yaml:"trust_score"`
}
