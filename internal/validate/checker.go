package validate

import (
	"context"

	"github.com/veriscope/veriscope/internal/model"
)

// URLChecker checks whether an evidence URL is live, trusted, or fabricated.
type URLChecker interface {
	CheckURL(ctx context.Context, rawURL string) model.URLCheckResult
}

// ContentChecker checks whether excerpt text is plausible content for its URL.
type ContentChecker interface {
	CheckContent(ctx context.Context, rawURL, text string) model.ContentCheckResult
}
