package fusion

import (
	"context"
	"sync"

	"github.com/veriscope/veriscope/internal/model"
)

// EvidenceSource is the capability interface implemented by evidence
// connectors (encyclopedia APIs, academic DBs, news search, crawlers).
// Implementations must tolerate concurrent invocation and must not block
// indefinitely; the engine imposes its own per-fetch timeout regardless.
type EvidenceSource interface {
	// FetchEvidence returns a ranked list of evidence for one query.
	// Source-reported order is rank order.
	FetchEvidence(ctx context.Context, query, language string) ([]model.EvidenceItem, error)

	// IsAvailable reports whether the source is configured and reachable
	// enough to be worth querying.
	IsAvailable() bool

	// SourceID returns a stable identifier for logging and registry lookup.
	SourceID() string

	// SourceType classifies the source for trust weighting.
	SourceType() model.SourceType
}

// Registry holds the registered evidence sources. The engine iterates the
// registry and filters by availability; no framework-managed discovery.
type Registry struct {
	mu      sync.RWMutex
	sources []EvidenceSource
	base    []EvidenceSource // always-trusted sources appended to every fusion
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a source to the registry.
func (r *Registry) Register(s EvidenceSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, s)
}

// RegisterBase adds an always-trusted base source, consulted for the
// original query regardless of fusion outcome.
func (r *Registry) RegisterBase(s EvidenceSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.base = append(r.base, s)
}

// Available returns the currently available registered sources.
func (r *Registry) Available() []EvidenceSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []EvidenceSource
	for _, s := range r.sources {
		if s.IsAvailable() {
			out = append(out, s)
		}
	}
	return out
}

// BaseSources returns the available always-trusted sources.
func (r *Registry) BaseSources() []EvidenceSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []EvidenceSource
	for _, s := range r.base {
		if s.IsAvailable() {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of registered sources, base included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources) + len(r.base)
}
