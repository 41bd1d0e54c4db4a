package model

import "time"

// Report is the complete result of one analyzeAndVerify run.
type Report struct {
	Topic       string    `json:"topic"`
	GeneratedAt time.Time `json:"generated_at"`

	Evidence      []EvidenceItem         `json:"evidence"`
	Validation    ValidationReport       `json:"validation"`
	Verifications []VerificationResult   `json:"verifications,omitempty"`
	Assessment    *CredibilityAssessment `json:"assessment,omitempty"`

	// Narrative is the synthesized prose, or the deterministic fallback
	// report when every AI backend failed or none were enabled.
	Narrative       string `json:"narrative"`
	NarrativeSource string `json:"narrative_source"` // provider name or "fallback"
}
