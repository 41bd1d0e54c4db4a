package model

// VerificationStatus is the verdict for one claim after checking it
// against the fused evidence set.
type VerificationStatus string

const (
	StatusVerified          VerificationStatus = "VERIFIED"
	StatusPartiallyVerified VerificationStatus = "PARTIALLY_VERIFIED"
	StatusUnverified        VerificationStatus = "UNVERIFIED"
	StatusDisputed          VerificationStatus = "DISPUTED"
	StatusFalse             VerificationStatus = "FALSE"
)

// VerificationResult is the outcome of verifying one claim. Immutable
// once computed.
type VerificationResult struct {
	ClaimID              string             `json:"claim_id"`
	OriginalClaim        string             `json:"original_claim"`
	Status               VerificationStatus `json:"status"`
	ConfidenceScore      float64            `json:"confidence_score"`
	SupportingEvidence   []EvidenceItem     `json:"supporting_evidence"`
	ContradictingEvidence []EvidenceItem    `json:"contradicting_evidence"`
	Summary              string             `json:"summary"`
	RelatedConcepts      []string           `json:"related_concepts,omitempty"`
}

// RiskLevel bands the overall credibility of a claim set.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// CredibilityAssessment aggregates per-claim verification results.
// Recomputed whenever the claim set changes.
type CredibilityAssessment struct {
	OverallScore  float64   `json:"overall_score"` // 0..1
	VerifiedCount int       `json:"verified_count"`
	TotalClaims   int       `json:"total_claims"`
	RiskLevel     RiskLevel `json:"risk_level"`
	Warnings      []string  `json:"warnings,omitempty"`
}
