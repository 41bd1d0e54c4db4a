package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/veriscope/veriscope/internal/cache"
	"github.com/veriscope/veriscope/internal/model"
	"github.com/veriscope/veriscope/internal/util"
	"github.com/veriscope/veriscope/internal/worker"
)

const (
	livenessMaxRetries = 3
	livenessCacheTTL   = 15 * time.Minute
)

// livenessSleepFunc is the sleep function used between retries (injectable for tests)
var livenessSleepFunc = time.Sleep

// Hosts that only ever appear in fabricated citations.
var placeholderHosts = map[string]bool{
	"example.com": true, "example.org": true, "example.net": true,
	"test.com": true, "localhost": true, "domain.com": true,
	"website.com": true, "url.com": true,
}

// HTTPLivenessChecker probes evidence URLs with HEAD requests, bounded by
// a per-domain rate limiter and an optional robots.txt gate, and caches
// results so repeated validation of the same URL costs one request.
type HTTPLivenessChecker struct {
	httpClient *http.Client
	trusted    *TrustedDomains
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	cache      cache.Cache
	userAgent  string
	logger     *zap.Logger
}

// NewHTTPLivenessChecker creates a liveness checker. The limiter, robots
// checker, and cache may be nil to disable the corresponding behavior.
func NewHTTPLivenessChecker(httpCfg model.HTTPConfig, trusted *TrustedDomains, limiter *worker.Limiter, robots *util.RobotsChecker, resultCache cache.Cache, logger *zap.Logger) *HTTPLivenessChecker {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPLivenessChecker{
		httpClient: &http.Client{
			Timeout: httpCfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		trusted:   trusted,
		limiter:   limiter,
		robots:    robots,
		cache:     resultCache,
		userAgent: httpCfg.UserAgent,
		logger:    logger,
	}
}

// CheckURL probes a single URL. Fabricated-looking URLs are flagged as
// hallucinations without any network traffic.
func (c *HTTPLivenessChecker) CheckURL(ctx context.Context, rawURL string) model.URLCheckResult {
	if result, ok := c.structuralCheck(rawURL); !ok {
		return result
	}

	if c.cache != nil {
		if raw, found := c.cache.Get(cache.Key("liveness", rawURL)); found {
			var cached model.URLCheckResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached
			}
		}
	}

	result := c.probeWithRetry(ctx, rawURL)

	if c.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			_ = c.cache.Set(cache.Key("liveness", rawURL), raw, livenessCacheTTL)
		}
	}
	return result
}

// structuralCheck rejects URLs that cannot be real before any network call.
// The second return is false when the result is final.
func (c *HTTPLivenessChecker) structuralCheck(rawURL string) (model.URLCheckResult, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return model.URLCheckResult{
			IsHallucination: true,
			FailureReason:   "malformed URL",
		}, false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return model.URLCheckResult{
			FailureReason: fmt.Sprintf("unsupported scheme: %s", parsed.Scheme),
		}, false
	}

	host := strings.ToLower(parsed.Hostname())
	if placeholderHosts[host] || !strings.Contains(host, ".") {
		return model.URLCheckResult{
			IsHallucination: true,
			FailureReason:   "placeholder host",
		}, false
	}
	if strings.ContainsAny(parsed.Path, "<>{}") || strings.Contains(parsed.Path, "...") {
		return model.URLCheckResult{
			IsHallucination: true,
			FailureReason:   "placeholder path",
		}, false
	}
	return model.URLCheckResult{}, true
}

func (c *HTTPLivenessChecker) probeWithRetry(ctx context.Context, rawURL string) model.URLCheckResult {
	var result model.URLCheckResult
	for attempt := 0; attempt < livenessMaxRetries; attempt++ {
		result = c.probe(ctx, rawURL)
		if !isRetryable(result) || ctx.Err() != nil {
			return result
		}
		if attempt < livenessMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			livenessSleepFunc(backoff)
		}
	}
	return result
}

func (c *HTTPLivenessChecker) probe(ctx context.Context, rawURL string) model.URLCheckResult {
	trusted := c.trusted != nil && c.trusted.IsTrusted(rawURL)
	result := model.URLCheckResult{IsTrustedDomain: trusted}

	if c.robots != nil {
		allowed, delay, err := c.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			// Disallowed by robots.txt: treat the URL as real but unprobed.
			result.IsValid = true
			result.FailureReason = "robots.txt disallows probing"
			return result
		}
		if c.limiter != nil {
			if err := c.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
				result.FailureReason = "context cancelled"
				return result
			}
		}
	} else if c.limiter != nil {
		if err := c.limiter.Wait(ctx, rawURL); err != nil {
			result.FailureReason = "context cancelled"
			return result
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		result.FailureReason = fmt.Sprintf("create request: %v", err)
		return result
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	result.ResponseTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "no such host") {
			result.IsHallucination = true
			result.FailureReason = "host does not resolve"
			return result
		}
		result.FailureReason = fmt.Sprintf("request failed: %v", err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.IsValid = true
		result.IsAccessible = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.FailureReason = fmt.Sprintf("dead link: %d", resp.StatusCode)
	case resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusForbidden:
		// Some hosts reject HEAD; the URL exists even if we cannot probe it.
		result.IsValid = true
		result.FailureReason = fmt.Sprintf("probe rejected: %d", resp.StatusCode)
	default:
		result.FailureReason = fmt.Sprintf("unexpected status: %d", resp.StatusCode)
	}

	c.logger.Debug("liveness probe",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int64("ms", result.ResponseTimeMs))

	return result
}

func isRetryable(result model.URLCheckResult) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if result.FailureReason != "" {
		s := strings.ToLower(result.FailureReason)
		return strings.Contains(s, "timeout") ||
			strings.Contains(s, "connection refused") ||
			strings.Contains(s, "connection reset")
	}
	return false
}
