package llm

import (
	"fmt"
	"strings"

	"github.com/veriscope/veriscope/internal/model"
)

// NoResultsReport is the deterministic answer for the empty-evidence case.
// It always contains the literal topic string.
func NoResultsReport(topic, language string) string {
	if language == "ko" {
		return fmt.Sprintf("\"%s\"에 대한 정보를 찾을 수 없습니다. 다른 검색어로 다시 시도해 주세요.", topic)
	}
	return fmt.Sprintf("No information could be found about %q. Try rephrasing the topic or checking the spelling.", topic)
}

// FallbackReport assembles a structured narrative entirely from
// already-computed verification data. It is used when every AI backend in
// the chain fails or none are enabled, so the pipeline always terminates
// with user-facing content.
func FallbackReport(topic string, results []model.VerificationResult, assessment model.CredibilityAssessment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", topic)

	if len(results) == 0 {
		b.WriteString("No claims were submitted for verification.\n")
	} else {
		counts := make(map[model.VerificationStatus]int)
		for _, r := range results {
			counts[r.Status]++
		}

		b.WriteString("## Claim Verification\n\n")
		fmt.Fprintf(&b, "%d claim(s) checked against the collected evidence:\n\n", len(results))
		fmt.Fprintf(&b, "| Status | Count |\n|---|---|\n")
		for _, status := range []model.VerificationStatus{
			model.StatusVerified,
			model.StatusPartiallyVerified,
			model.StatusDisputed,
			model.StatusFalse,
			model.StatusUnverified,
		} {
			if counts[status] > 0 {
				fmt.Fprintf(&b, "| %s | %d |\n", status, counts[status])
			}
		}
		b.WriteString("\n")

		for _, r := range results {
			fmt.Fprintf(&b, "- %q - %s (confidence %.2f). %s\n",
				r.OriginalClaim, r.Status, r.ConfidenceScore, r.Summary)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Credibility\n\n")
	fmt.Fprintf(&b, "Overall score: %.2f / 1.00 - risk level: %s\n", assessment.OverallScore, assessment.RiskLevel)

	if len(assessment.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range assessment.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
