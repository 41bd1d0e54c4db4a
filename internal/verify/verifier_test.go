package verify

import (
	"strings"
	"testing"

	"github.com/veriscope/veriscope/internal/model"
)

func newTestVerifier() *Verifier {
	return NewVerifier(model.VerifyConfig{SimilarityThreshold: 0.25, MaxKeywords: 8})
}

func TestClassify_DecisionTable(t *testing.T) {
	tests := []struct {
		supporting     int
		contradicting  int
		wantStatus     model.VerificationStatus
		wantConfidence float64
	}{
		{0, 0, model.StatusUnverified, 0.4},
		{1, 0, model.StatusVerified, 0.7},
		{0, 1, model.StatusFalse, 0.3},
		{1, 1, model.StatusDisputed, 0.5},
		{4, 0, model.StatusVerified, 0.9999}, // sentinel, checked below
	}

	for _, tt := range tests {
		status, confidence := classify(tt.supporting, tt.contradicting)
		if status != tt.wantStatus {
			t.Errorf("classify(%d,%d) status = %s, want %s", tt.supporting, tt.contradicting, status, tt.wantStatus)
		}
		if tt.wantConfidence < 0.99 && confidence != tt.wantConfidence {
			t.Errorf("classify(%d,%d) confidence = %f, want %f", tt.supporting, tt.contradicting, confidence, tt.wantConfidence)
		}
	}

	// Confidence grows 0.1 per supporting source and caps at 0.95.
	if _, c := classify(3, 0); c != 0.9 {
		t.Errorf("classify(3,0) confidence = %f, want 0.9", c)
	}
	if _, c := classify(10, 0); c != 0.95 {
		t.Errorf("classify(10,0) confidence = %f, want cap 0.95", c)
	}
}

func TestVerify_SupportedClaim(t *testing.T) {
	v := newTestVerifier()

	evidence := []model.EvidenceItem{
		{
			SourceType: model.SourceEncyclopedia,
			SourceName: "Wikipedia",
			URL:        "https://en.wikipedia.org/wiki/Paris",
			Excerpt:    "Paris is the capital and largest city of France, with an estimated population of over two million residents.",
		},
		{
			SourceType: model.SourceWeb,
			URL:        "https://irrelevant.example/gardening",
			Excerpt:    "Tomatoes grow best in well-drained soil with plenty of sunlight.",
		},
	}

	result := v.Verify("Paris is the capital of France", evidence, "paris", "en")

	if result.Status != model.StatusVerified {
		t.Errorf("status = %s, want VERIFIED", result.Status)
	}
	if result.ConfidenceScore < 0.6 {
		t.Errorf("confidence = %f, want >= 0.6", result.ConfidenceScore)
	}
	if len(result.SupportingEvidence) != 1 {
		t.Fatalf("supporting = %d, want 1", len(result.SupportingEvidence))
	}
	if result.SupportingEvidence[0].Stance != model.StanceSupport {
		t.Errorf("stance = %s, want support", result.SupportingEvidence[0].Stance)
	}
	if len(result.ContradictingEvidence) != 0 {
		t.Errorf("contradicting = %d, want 0", len(result.ContradictingEvidence))
	}
	if result.ClaimID == "" {
		t.Error("claim ID must be set")
	}
	if !strings.Contains(result.Summary, "1 source(s) support") {
		t.Errorf("unexpected summary: %q", result.Summary)
	}
}

func TestVerify_ContradictionMarkersFlipStance(t *testing.T) {
	v := newTestVerifier()

	evidence := []model.EvidenceItem{
		{
			URL:     "https://factcheck.example/lyon",
			Excerpt: "The statement that Lyon is the capital of France is not true; the capital of France is Paris.",
		},
	}

	result := v.Verify("Lyon is the capital of France", evidence, "lyon", "en")

	if result.Status != model.StatusFalse {
		t.Errorf("status = %s, want FALSE", result.Status)
	}
	if len(result.ContradictingEvidence) != 1 {
		t.Fatalf("contradicting = %d, want 1", len(result.ContradictingEvidence))
	}
	if result.ContradictingEvidence[0].Stance != model.StanceContradict {
		t.Errorf("stance = %s, want contradict", result.ContradictingEvidence[0].Stance)
	}
}

func TestVerify_KoreanMarkersAndSummary(t *testing.T) {
	v := newTestVerifier()

	evidence := []model.EvidenceItem{
		{
			URL:     "https://news.example/ko",
			Excerpt: "서울이 일본의 수도라는 주장은 거짓이다. 서울은 대한민국의 수도이다.",
		},
	}

	result := v.Verify("서울은 일본의 수도이다", evidence, "서울", "ko")

	if result.Status != model.StatusFalse {
		t.Errorf("status = %s, want FALSE", result.Status)
	}
	if !strings.Contains(result.Summary, "반박") {
		t.Errorf("expected Korean summary, got %q", result.Summary)
	}
}

func TestVerify_NoEvidenceIsUnverified(t *testing.T) {
	v := newTestVerifier()

	result := v.Verify("The moon is made of basalt", nil, "", "en")
	if result.Status != model.StatusUnverified {
		t.Errorf("status = %s, want UNVERIFIED", result.Status)
	}
	if result.ConfidenceScore != 0.4 {
		t.Errorf("confidence = %f, want 0.4", result.ConfidenceScore)
	}
}

func TestVerify_EmptyExcerptsSkipped(t *testing.T) {
	v := newTestVerifier()

	evidence := []model.EvidenceItem{
		{URL: "https://empty.example/", Excerpt: ""},
	}
	result := v.Verify("Paris is the capital of France", evidence, "paris", "en")
	if result.Status != model.StatusUnverified {
		t.Errorf("empty excerpts must not count as matches, got %s", result.Status)
	}
}

func TestExtractKeywords(t *testing.T) {
	keywords := extractKeywords("The Eiffel Tower was completed in 1889 in Paris", 8)

	want := map[string]bool{"eiffel": true, "tower": true, "completed": true, "paris": true}
	for _, kw := range keywords {
		if !want[kw] {
			t.Errorf("unexpected keyword %q", kw)
		}
		delete(want, kw)
	}
	for kw := range want {
		t.Errorf("missing keyword %q", kw)
	}
}

func TestExtractKeywords_TruncationPrefersLongerTokens(t *testing.T) {
	claim := "aa bbb cccc ddddd eeeeee fffffff gggggggg hhhhhhhhh iiiiiiiiii jj"
	keywords := extractKeywords(claim, 3)

	if len(keywords) != 3 {
		t.Fatalf("expected 3 keywords, got %d: %v", len(keywords), keywords)
	}
	for _, kw := range keywords {
		if len(kw) < 8 {
			t.Errorf("short token %q survived truncation over longer ones", kw)
		}
	}
}

func TestPrimaryKeyword_FallsBackToLongest(t *testing.T) {
	if got := primaryKeyword("Analyzer", []string{"short", "lengthier"}); got != "analyzer" {
		t.Errorf("analyzer keyword should win, got %q", got)
	}
	if got := primaryKeyword("", []string{"short", "lengthier"}); got != "lengthier" {
		t.Errorf("longest token fallback failed, got %q", got)
	}
}

func TestJaccard(t *testing.T) {
	if s := jaccard([]string{"a", "b"}, []string{"a", "b"}); s != 1.0 {
		t.Errorf("identical sets = %f, want 1.0", s)
	}
	if s := jaccard([]string{"a"}, []string{"b"}); s != 0.0 {
		t.Errorf("disjoint sets = %f, want 0.0", s)
	}
	if s := jaccard(nil, []string{"a"}); s != 0.0 {
		t.Errorf("empty set = %f, want 0.0", s)
	}
}
