package verify

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/veriscope/veriscope/internal/model"
)

// Similarity weighting between a claim and an excerpt. Hand-tuned; the
// threshold below which evidence is ignored is configurable.
const (
	jaccardWeight      = 0.4
	primaryHitWeight   = 0.3
	keywordRatioWeight = 0.3

	defaultSimilarityThreshold = 0.25
	defaultMaxKeywords         = 8
)

// Bilingual negation/contradiction markers. An excerpt containing one of
// these is read as contradicting the claim rather than supporting it.
var contradictionMarkers = []string{
	"not true", "false", "incorrect", "disputed", "untrue", "debunked",
	"no evidence", "myth", "contrary to", "refuted", "misleading",
	"거짓", "오류", "사실이 아니", "틀렸", "반박", "근거 없", "잘못된",
}

// Verifier scores claims against fused, validated evidence. Pure
// computation, no I/O; safe to call from concurrent claim loops.
type Verifier struct {
	threshold   float64
	maxKeywords int
}

// NewVerifier creates a verifier from config.
func NewVerifier(cfg model.VerifyConfig) *Verifier {
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = defaultSimilarityThreshold
	}
	maxKeywords := cfg.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = defaultMaxKeywords
	}
	return &Verifier{threshold: threshold, maxKeywords: maxKeywords}
}

// Verify scores one claim against the evidence set and derives a
// verification status, confidence, and localized summary. The analyzer's
// primary keyword is used when provided; language selects summary
// templates ("ko" or default English).
func (v *Verifier) Verify(claim string, evidence []model.EvidenceItem, analyzerKeyword, language string) model.VerificationResult {
	keywords := extractKeywords(claim, v.maxKeywords)
	primary := primaryKeyword(analyzerKeyword, keywords)
	claimTokens := tokenize(claim)

	var supporting, contradicting []model.EvidenceItem
	related := make(map[string]bool)

	for _, item := range evidence {
		if item.Excerpt == "" {
			continue
		}
		similarity := v.similarity(claimTokens, keywords, primary, item.Excerpt)
		if similarity <= v.threshold {
			continue
		}

		item.RelevanceScore = similarity
		if containsContradiction(item.Excerpt) {
			item.Stance = model.StanceContradict
			contradicting = append(contradicting, item)
		} else {
			item.Stance = model.StanceSupport
			supporting = append(supporting, item)
		}

		for _, kw := range keywords {
			if strings.Contains(strings.ToLower(item.Excerpt), kw) {
				related[kw] = true
			}
		}
	}

	status, confidence := classify(len(supporting), len(contradicting))

	var relatedConcepts []string
	for _, kw := range keywords {
		if related[kw] && kw != primary {
			relatedConcepts = append(relatedConcepts, kw)
		}
	}

	return model.VerificationResult{
		ClaimID:               uuid.NewString(),
		OriginalClaim:         claim,
		Status:                status,
		ConfidenceScore:       confidence,
		SupportingEvidence:    supporting,
		ContradictingEvidence: contradicting,
		Summary:               summarize(status, len(supporting), len(contradicting), language),
		RelatedConcepts:       relatedConcepts,
	}
}

// similarity combines Jaccard token overlap, a primary-keyword hit, and
// the matched-keyword ratio. Capped at 1.0.
func (v *Verifier) similarity(claimTokens, keywords []string, primary, excerpt string) float64 {
	lower := strings.ToLower(excerpt)
	excerptTokens := tokenize(excerpt)

	score := jaccardWeight * jaccard(claimTokens, excerptTokens)

	if primary != "" && strings.Contains(lower, primary) {
		score += primaryHitWeight
	}

	if len(keywords) > 0 {
		var matched int
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		score += keywordRatioWeight * float64(matched) / float64(len(keywords))
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// classify maps (supporting, contradicting) counts onto the status table.
func classify(supporting, contradicting int) (model.VerificationStatus, float64) {
	switch {
	case supporting > 0 && contradicting == 0:
		confidence := 0.6 + 0.1*float64(supporting)
		if confidence > 0.95 {
			confidence = 0.95
		}
		return model.StatusVerified, confidence
	case supporting > 0 && contradicting > 0:
		return model.StatusDisputed, 0.5
	case contradicting > 0:
		return model.StatusFalse, 0.3
	default:
		return model.StatusUnverified, 0.4
	}
}

func containsContradiction(excerpt string) bool {
	lower := strings.ToLower(excerpt)
	for _, marker := range contradictionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// summarize renders a fixed, localized template per status.
func summarize(status model.VerificationStatus, supporting, contradicting int, language string) string {
	if language == "ko" {
		switch status {
		case model.StatusVerified:
			return fmt.Sprintf("%d개의 출처가 이 주장을 뒷받침합니다.", supporting)
		case model.StatusDisputed:
			return fmt.Sprintf("출처 간 의견이 엇갈립니다 (지지 %d, 반박 %d).", supporting, contradicting)
		case model.StatusFalse:
			return fmt.Sprintf("%d개의 출처가 이 주장을 반박하며, 뒷받침하는 출처는 없습니다.", contradicting)
		default:
			return "이 주장을 검증할 수 있는 출처를 찾지 못했습니다."
		}
	}

	switch status {
	case model.StatusVerified:
		return fmt.Sprintf("%d source(s) support this claim with no contradictions found.", supporting)
	case model.StatusDisputed:
		return fmt.Sprintf("Sources disagree on this claim (%d supporting, %d contradicting).", supporting, contradicting)
	case model.StatusFalse:
		return fmt.Sprintf("%d source(s) contradict this claim and none support it.", contradicting)
	default:
		return "No sources were found that could verify this claim."
	}
}
