package llm

import (
	"fmt"
	"strings"

	"github.com/veriscope/veriscope/internal/model"
)

// limitedEvidenceCount is the item count below which the prompt restricts
// the model to a narrow, hedged summary. Under-evidenced prompts are the
// primary cause of fabricated output.
const limitedEvidenceCount = 3

// PromptInput carries everything the prompt builder embeds.
type PromptInput struct {
	Topic      string
	Language   string // "en" or "ko"
	Evidence   []model.EvidenceItem
	Results    []model.VerificationResult
	Assessment model.CredibilityAssessment
}

// BuildPrompt constructs the synthesis prompt. It branches on evidence
// volume: zero evidence forces a no-results statement, fewer than three
// items restricts scope, three or more requests a full structured analysis.
// Every branch carries the anti-fabrication rules and the URL allowlist.
func BuildPrompt(input PromptInput) string {
	var b strings.Builder

	b.WriteString("CRITICAL RULES:\n")
	b.WriteString("1. You MUST ONLY reference URLs from the allowed list below. Never cite any other source.\n")
	b.WriteString("2. DO NOT infer, speculate, or add facts beyond the supplied excerpts.\n")
	b.WriteString("3. If evidence is insufficient, say so explicitly instead of filling gaps.\n")
	b.WriteString("4. Describe SUPPORT QUALITY, not truth: \"supported by N sources\", \"evidence is lacking for\".\n")
	if input.Language == "ko" {
		b.WriteString("5. Respond in Korean.\n")
	}
	b.WriteString("\nAllowed URLs:")
	b.WriteString(joinURLs(evidenceURLs(input.Evidence)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Topic: %s\n\n", input.Topic)

	switch {
	case len(input.Evidence) == 0:
		fmt.Fprintf(&b, "No evidence was found for this topic. State clearly that no information could be found about %q and stop. Do not guess or reconstruct from memory.\n", input.Topic)
		return b.String()

	case len(input.Evidence) < limitedEvidenceCount:
		fmt.Fprintf(&b, "Only %d evidence item(s) were collected - too few for a full analysis. Write a short, hedged summary limited strictly to what these excerpts say, and state that the evidence base is limited.\n\n", len(input.Evidence))

	default:
		b.WriteString("Write a structured analysis: (1) what the evidence establishes about the topic, (2) how each claim fared against the evidence, (3) overall credibility. 3-6 paragraphs.\n\n")
	}

	b.WriteString("Evidence:\n")
	for i, item := range input.Evidence {
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n", i+1, item.SourceName, item.URL, item.Excerpt)
	}

	if len(input.Results) > 0 {
		b.WriteString("Claim verification results:\n")
		for _, r := range input.Results {
			fmt.Fprintf(&b, "- %q: %s (confidence %.2f, %d supporting, %d contradicting)\n",
				r.OriginalClaim, r.Status, r.ConfidenceScore,
				len(r.SupportingEvidence), len(r.ContradictingEvidence))
		}
		fmt.Fprintf(&b, "\nOverall credibility: %.2f (risk: %s)\n",
			input.Assessment.OverallScore, input.Assessment.RiskLevel)
	}

	return b.String()
}

func evidenceURLs(evidence []model.EvidenceItem) []string {
	seen := make(map[string]bool, len(evidence))
	var urls []string
	for _, item := range evidence {
		if item.URL == "" || seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		urls = append(urls, item.URL)
	}
	return urls
}

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "\n(No evidence URLs available)"
	}
	var b strings.Builder
	for i, url := range urls {
		if i >= 20 { // cap to avoid token bloat
			fmt.Fprintf(&b, "\n... and %d more URLs", len(urls)-20)
			break
		}
		fmt.Fprintf(&b, "\n- %s", url)
	}
	return b.String()
}
