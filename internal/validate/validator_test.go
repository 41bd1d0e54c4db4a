package validate

import (
	"context"
	"testing"

	"github.com/veriscope/veriscope/internal/model"
)

// fakeURLChecker returns canned results per URL.
type fakeURLChecker struct {
	results map[string]model.URLCheckResult
	calls   int
}

func (f *fakeURLChecker) CheckURL(_ context.Context, rawURL string) model.URLCheckResult {
	f.calls++
	if r, ok := f.results[rawURL]; ok {
		return r
	}
	return model.URLCheckResult{FailureReason: "unknown URL"}
}

type fakeContentChecker struct {
	valid bool
}

func (f *fakeContentChecker) CheckContent(_ context.Context, _, _ string) model.ContentCheckResult {
	if f.valid {
		return model.ContentCheckResult{IsValid: true}
	}
	return model.ContentCheckResult{FailureReason: "content rejected"}
}

func newTestValidator(urls map[string]model.URLCheckResult, contentValid bool, cfg model.ValidationConfig) (*Validator, *fakeURLChecker) {
	uc := &fakeURLChecker{results: urls}
	return NewValidator(uc, &fakeContentChecker{valid: contentValid}, cfg, 4, nil), uc
}

func enabledConfig(strict bool) model.ValidationConfig {
	return model.ValidationConfig{Enabled: true, Strict: strict, SlowResponseMs: 3000}
}

func TestValidate_HallucinationAlwaysInvalid(t *testing.T) {
	urls := map[string]model.URLCheckResult{
		"https://fake.example.invalid/a": {IsHallucination: true, FailureReason: "host does not resolve"},
	}

	for _, strict := range []bool{false, true} {
		v, _ := newTestValidator(urls, true, enabledConfig(strict))
		outcome := v.Validate(context.Background(), model.EvidenceItem{
			URL:            "https://fake.example.invalid/a",
			Excerpt:        "A perfectly plausible looking excerpt of text.",
			RelevanceScore: 0.8,
		})

		if outcome.IsValid {
			t.Errorf("strict=%v: hallucinated URL must be invalid", strict)
		}
		if outcome.FailureReason != "likely fabricated URL" {
			t.Errorf("strict=%v: reason = %q", strict, outcome.FailureReason)
		}
		// 0.8 * 0.1 hallucination penalty * 0.7 inaccessible penalty
		if outcome.AdjustedRelevance > 0.1 {
			t.Errorf("strict=%v: hallucination should gut relevance, got %f", strict, outcome.AdjustedRelevance)
		}
	}
}

func TestValidate_LenientEitherSufficient(t *testing.T) {
	tests := []struct {
		name         string
		urlResult    model.URLCheckResult
		contentValid bool
		wantValid    bool
	}{
		{"url valid, content invalid", model.URLCheckResult{IsValid: true, IsAccessible: true}, false, true},
		{"url dead, content valid", model.URLCheckResult{FailureReason: "dead link: 404"}, true, true},
		{"trusted but inaccessible, content invalid", model.URLCheckResult{IsTrustedDomain: true}, false, true},
		{"url dead, content invalid", model.URLCheckResult{FailureReason: "dead link: 404"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls := map[string]model.URLCheckResult{"https://example.edu/x": tt.urlResult}
			v, _ := newTestValidator(urls, tt.contentValid, enabledConfig(false))

			outcome := v.Validate(context.Background(), model.EvidenceItem{
				URL:     "https://example.edu/x",
				Excerpt: "Some excerpt text of reasonable length for checks.",
			})
			if outcome.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v (reason %q)", outcome.IsValid, tt.wantValid, outcome.FailureReason)
			}
		})
	}
}

func TestValidate_StrictRequiresBoth(t *testing.T) {
	urls := map[string]model.URLCheckResult{
		"https://example.edu/x": {IsValid: true, IsAccessible: true},
	}

	v, _ := newTestValidator(urls, false, enabledConfig(true))
	outcome := v.Validate(context.Background(), model.EvidenceItem{
		URL:     "https://example.edu/x",
		Excerpt: "short",
	})
	if outcome.IsValid {
		t.Error("strict mode must require both URL and content validity")
	}

	v, _ = newTestValidator(urls, true, enabledConfig(true))
	outcome = v.Validate(context.Background(), model.EvidenceItem{
		URL:     "https://example.edu/x",
		Excerpt: "A perfectly plausible looking excerpt of text.",
	})
	if !outcome.IsValid {
		t.Errorf("strict mode should accept url+content valid, got reason %q", outcome.FailureReason)
	}
}

func TestValidate_MissingURL(t *testing.T) {
	v, uc := newTestValidator(nil, true, enabledConfig(false))
	outcome := v.Validate(context.Background(), model.EvidenceItem{
		Excerpt: "An excerpt without any URL attached to it at all.",
	})
	if !outcome.IsValid {
		t.Errorf("lenient mode should accept URL-less items with valid content, got %q", outcome.FailureReason)
	}
	if uc.calls != 0 {
		t.Errorf("no liveness check expected for missing URL, got %d calls", uc.calls)
	}

	v, _ = newTestValidator(nil, true, enabledConfig(true))
	outcome = v.Validate(context.Background(), model.EvidenceItem{
		Excerpt: "An excerpt without any URL attached to it at all.",
	})
	if outcome.IsValid {
		t.Error("strict mode must reject URL-less items")
	}
}

func TestValidate_DisabledSkipsNetworkCalls(t *testing.T) {
	v, uc := newTestValidator(nil, false, model.ValidationConfig{Enabled: false})

	outcome := v.Validate(context.Background(), model.EvidenceItem{
		URL:            "https://anything.example/x",
		Excerpt:        "whatever",
		RelevanceScore: 0.42,
	})

	if !outcome.IsValid {
		t.Error("disabled validation must pass everything through")
	}
	if outcome.AdjustedRelevance != 0.42 {
		t.Errorf("disabled validation must not rescore, got %f", outcome.AdjustedRelevance)
	}
	if uc.calls != 0 {
		t.Errorf("disabled validation must not touch the URL checker, got %d calls", uc.calls)
	}
}

func TestValidate_Rescoring(t *testing.T) {
	tests := []struct {
		name      string
		urlResult model.URLCheckResult
		score     float64
		wantMin   float64
		wantMax   float64
	}{
		{"trusted bonus", model.URLCheckResult{IsValid: true, IsAccessible: true, IsTrustedDomain: true}, 0.5, 0.59, 0.61},
		{"inaccessible penalty", model.URLCheckResult{FailureReason: "dead link: 404"}, 0.5, 0.34, 0.36},
		{"slow response penalty", model.URLCheckResult{IsValid: true, IsAccessible: true, ResponseTimeMs: 5000}, 0.5, 0.47, 0.48},
		{"bonus clamped to 1", model.URLCheckResult{IsValid: true, IsAccessible: true, IsTrustedDomain: true}, 0.95, 0.99, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls := map[string]model.URLCheckResult{"https://host.example/x": tt.urlResult}
			v, _ := newTestValidator(urls, true, enabledConfig(false))

			outcome := v.Validate(context.Background(), model.EvidenceItem{
				URL:            "https://host.example/x",
				Excerpt:        "A perfectly plausible looking excerpt of text.",
				RelevanceScore: tt.score,
			})
			if outcome.AdjustedRelevance < tt.wantMin || outcome.AdjustedRelevance > tt.wantMax {
				t.Errorf("adjusted = %f, want in [%f, %f]", outcome.AdjustedRelevance, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	urls := map[string]model.URLCheckResult{
		"https://example.edu/x": {IsValid: true, IsAccessible: true},
	}
	v, _ := newTestValidator(urls, true, enabledConfig(false))

	item := model.EvidenceItem{
		URL:            "https://example.edu/x",
		Excerpt:        "A perfectly plausible looking excerpt of text.",
		RelevanceScore: 0.7,
	}

	first := v.Validate(context.Background(), item)
	second := v.Validate(context.Background(), item)

	if first.IsValid != second.IsValid || first.AdjustedRelevance != second.AdjustedRelevance {
		t.Errorf("re-validation changed the verdict: %+v vs %+v", first, second)
	}
}

func TestValidateBatch_Report(t *testing.T) {
	urls := map[string]model.URLCheckResult{
		"https://good.example/1":    {IsValid: true, IsAccessible: true},
		"https://trusted.example/2": {IsValid: true, IsAccessible: true, IsTrustedDomain: true},
		"https://dead.example/3":    {FailureReason: "dead link: 404"},
		"https://fake.example/4":    {IsHallucination: true, FailureReason: "host does not resolve"},
	}
	v, _ := newTestValidator(urls, true, enabledConfig(false))

	items := []model.EvidenceItem{
		{URL: "https://good.example/1", Excerpt: "A perfectly plausible looking excerpt of text."},
		{URL: "https://trusted.example/2", Excerpt: "A perfectly plausible looking excerpt of text."},
		{URL: "https://dead.example/3", Excerpt: "A perfectly plausible looking excerpt of text."},
		{URL: "https://fake.example/4", Excerpt: "A perfectly plausible looking excerpt of text."},
	}

	outcomes, report := v.ValidateBatch(context.Background(), items)

	if len(outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(outcomes))
	}
	// Outcomes must stay in input order.
	if outcomes[3].Evidence.URL != "https://fake.example/4" {
		t.Error("batch outcomes out of order")
	}

	if report.Total != 4 {
		t.Errorf("Total = %d, want 4", report.Total)
	}
	if report.Valid != 3 || report.Invalid != 1 {
		t.Errorf("Valid/Invalid = %d/%d, want 3/1", report.Valid, report.Invalid)
	}
	if report.Hallucinations != 1 {
		t.Errorf("Hallucinations = %d, want 1", report.Hallucinations)
	}
	if report.TrustedSources != 1 {
		t.Errorf("TrustedSources = %d, want 1", report.TrustedSources)
	}
	if report.ValidationRate != 0.75 {
		t.Errorf("ValidationRate = %f, want 0.75", report.ValidationRate)
	}
	if report.FailureReasons["likely fabricated URL"] != 1 {
		t.Errorf("missing fabricated-URL failure reason: %v", report.FailureReasons)
	}
}

func TestTrustedDomains(t *testing.T) {
	trusted := NewTrustedDomains([]string{"wikipedia.org", "reuters.com", "gov", "edu"})

	tests := []struct {
		url  string
		want bool
	}{
		{"https://en.wikipedia.org/wiki/Paris", true},
		{"https://wikipedia.org/", true},
		{"https://www.reuters.com/article/x", true},
		{"https://www.nasa.gov/news", true},
		{"https://cs.stanford.edu/paper", true},
		{"https://www.ox.ac.uk/research", true},
		{"https://evil-wikipedia.org.example.com/", false},
		{"https://randomblog.net/post", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		if got := trusted.IsTrusted(tt.url); got != tt.want {
			t.Errorf("IsTrusted(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
