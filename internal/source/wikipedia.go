// Package source holds concrete evidence connectors. Each connector
// implements fusion.EvidenceSource; the engine treats them uniformly.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/veriscope/veriscope/internal/cache"
	"github.com/veriscope/veriscope/internal/model"
	"github.com/veriscope/veriscope/internal/util"
	"github.com/veriscope/veriscope/internal/worker"
)

const (
	wikipediaSourceID = "wikipedia"
	searchResultLimit = 5
	fetchCacheTTL     = 15 * time.Minute
)

// WikipediaSource fetches encyclopedia evidence from the Wikipedia search
// and REST summary APIs. It is the default always-trusted base source:
// the engine appends its results for the original query regardless of
// fusion outcome.
type WikipediaSource struct {
	httpClient *http.Client
	cache      cache.Cache
	limiter    *worker.Limiter
	userAgent  string
	logger     *zap.Logger

	// baseURL is swappable in tests.
	baseURL func(lang string) string
}

// NewWikipediaSource wires the connector with the shared HTTP settings.
// cache and limiter may be nil; both are then skipped.
func NewWikipediaSource(httpCfg model.HTTPConfig, c cache.Cache, limiter *worker.Limiter, logger *zap.Logger) *WikipediaSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := httpCfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &WikipediaSource{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
		},
		cache:     c,
		limiter:   limiter,
		userAgent: httpCfg.UserAgent,
		logger:    logger,
		baseURL: func(lang string) string {
			return fmt.Sprintf("https://%s.wikipedia.org", lang)
		},
	}
}

func (s *WikipediaSource) SourceID() string {
	return wikipediaSourceID
}

func (s *WikipediaSource) SourceType() model.SourceType {
	return model.SourceEncyclopedia
}

// IsAvailable always returns true: Wikipedia needs no credentials, and
// transient reachability is handled per fetch.
func (s *WikipediaSource) IsAvailable() bool {
	return true
}

// FetchEvidence searches Wikipedia and enriches the top hit with its REST
// summary. Results are cached per (query, language).
func (s *WikipediaSource) FetchEvidence(ctx context.Context, query, language string) ([]model.EvidenceItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	lang := language
	if lang != "ko" {
		lang = "en"
	}

	cacheKey := cache.Key(wikipediaSourceID, lang, query)
	if s.cache != nil {
		if raw, ok := s.cache.Get(cacheKey); ok {
			var items []model.EvidenceItem
			if err := json.Unmarshal(raw, &items); err == nil {
				return items, nil
			}
		}
	}

	hits, err := s.search(ctx, lang, query)
	if err != nil {
		return nil, fmt.Errorf("wikipedia search %q: %w", query, err)
	}

	items := make([]model.EvidenceItem, 0, len(hits))
	for i, hit := range hits {
		excerpt := stripTags(hit.Snippet)
		if i == 0 {
			// The summary endpoint gives a much richer excerpt than the
			// search snippet; fall back to the snippet on any failure.
			if summary, err := s.summary(ctx, lang, hit.Title); err == nil && summary != "" {
				excerpt = summary
			} else if err != nil {
				s.logger.Debug("wikipedia summary fetch failed",
					zap.String("title", hit.Title), zap.Error(err))
			}
		}
		if excerpt == "" {
			continue
		}
		items = append(items, model.EvidenceItem{
			SourceType:     model.SourceEncyclopedia,
			SourceName:     "Wikipedia",
			URL:            pageURL(lang, hit.Title),
			Excerpt:        excerpt,
			RelevanceScore: 1.0 - 0.1*float64(i),
		})
	}

	if s.cache != nil && len(items) > 0 {
		if raw, err := json.Marshal(items); err == nil {
			_ = s.cache.Set(cacheKey, raw, fetchCacheTTL)
		}
	}
	return items, nil
}

type searchHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Query struct {
		Search []searchHit `json:"search"`
	} `json:"query"`
}

func (s *WikipediaSource) search(ctx context.Context, lang, query string) ([]searchHit, error) {
	endpoint := fmt.Sprintf("%s/w/api.php?action=query&list=search&format=json&srlimit=%d&srsearch=%s",
		s.baseURL(lang), searchResultLimit, url.QueryEscape(query))

	body, err := s.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return resp.Query.Search, nil
}

type summaryResponse struct {
	Extract string `json:"extract"`
}

func (s *WikipediaSource) summary(ctx context.Context, lang, title string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/rest_v1/page/summary/%s",
		s.baseURL(lang), url.PathEscape(title))

	body, err := s.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	var resp summaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode summary response: %w", err)
	}
	return strings.TrimSpace(resp.Extract), nil
}

func (s *WikipediaSource) get(ctx context.Context, endpoint string) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, endpoint); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func pageURL(lang, title string) string {
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s",
		lang, url.PathEscape(strings.ReplaceAll(title, " ", "_")))
}

// stripTags flattens search-API snippet HTML (<span class="searchmatch">
// markers and entities) to plain text.
func stripTags(snippet string) string {
	if snippet == "" {
		return ""
	}
	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(snippet))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(tokenizer.Text())
		}
	}
	return strings.TrimSpace(b.String())
}
