package verify

import (
	"fmt"

	"github.com/veriscope/veriscope/internal/model"
)

const warningClaimTruncateLen = 50

// Assess aggregates per-claim verification results into an overall
// credibility score, risk level, and warning list. Recomputed whenever
// the claim set changes; empty input yields a neutral 0.5.
func Assess(results []model.VerificationResult) model.CredibilityAssessment {
	assessment := model.CredibilityAssessment{
		TotalClaims: len(results),
		RiskLevel:   model.RiskLow,
	}
	if len(results) == 0 {
		assessment.OverallScore = 0.5
		return assessment
	}

	var verified, disputed, falseCount int
	for _, r := range results {
		switch r.Status {
		case model.StatusVerified, model.StatusPartiallyVerified:
			verified++
		case model.StatusDisputed:
			disputed++
			assessment.Warnings = append(assessment.Warnings,
				fmt.Sprintf("Claim disputed by sources: %q", truncateClaim(r.OriginalClaim)))
		case model.StatusFalse:
			falseCount++
			assessment.Warnings = append(assessment.Warnings,
				fmt.Sprintf("Claim contradicted by sources: %q", truncateClaim(r.OriginalClaim)))
		}
	}

	total := float64(len(results))
	assessment.VerifiedCount = verified
	assessment.OverallScore = (float64(verified)/total)*0.7 + (1-float64(falseCount)/total)*0.3

	switch {
	case falseCount > 0 || disputed > verified:
		assessment.RiskLevel = model.RiskHigh
	case disputed > 0:
		assessment.RiskLevel = model.RiskMedium
	}

	return assessment
}

func truncateClaim(claim string) string {
	runes := []rune(claim)
	if len(runes) <= warningClaimTruncateLen {
		return claim
	}
	return string(runes[:warningClaimTruncateLen]) + "..."
}
