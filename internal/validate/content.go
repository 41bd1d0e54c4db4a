package validate

import (
	"context"
	"strings"
	"unicode"

	"github.com/veriscope/veriscope/internal/model"
)

const minExcerptLength = 20

// HeuristicContentChecker validates excerpt text without network calls:
// real evidence excerpts are non-trivial prose, not fragments, error pages,
// or markup debris.
type HeuristicContentChecker struct{}

// NewHeuristicContentChecker creates a content checker.
func NewHeuristicContentChecker() *HeuristicContentChecker {
	return &HeuristicContentChecker{}
}

var errorPageMarkers = []string{
	"404 not found", "403 forbidden", "page not found", "access denied",
	"enable javascript", "captcha",
}

// CheckContent validates (url, excerpt) pairs.
func (c *HeuristicContentChecker) CheckContent(_ context.Context, _ string, text string) model.ContentCheckResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.ContentCheckResult{FailureReason: "empty excerpt"}
	}
	if len(trimmed) < minExcerptLength {
		return model.ContentCheckResult{FailureReason: "excerpt too short"}
	}

	lower := strings.ToLower(trimmed)
	for _, marker := range errorPageMarkers {
		if strings.Contains(lower, marker) {
			return model.ContentCheckResult{FailureReason: "excerpt looks like an error page"}
		}
	}

	var letters, total int
	for _, r := range trimmed {
		if !unicode.IsSpace(r) {
			total++
			if unicode.IsLetter(r) {
				letters++
			}
		}
	}
	if total > 0 && float64(letters)/float64(total) < 0.5 {
		return model.ContentCheckResult{FailureReason: "excerpt is mostly non-text"}
	}

	return model.ContentCheckResult{IsValid: true}
}
