// Package render writes verification reports as JSON and Markdown.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/veriscope/veriscope/internal/model"
)

// Renderer produces report output files and the terminal summary.
type Renderer struct {
	includeFooter bool
}

func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report.
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown builds the Markdown document for a report.
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Verification Report: %s\n\n", report.Topic)
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Narrative\n\n")
	b.WriteString(report.Narrative)
	fmt.Fprintf(&b, "\n\n*Narrative source: %s*\n\n", report.NarrativeSource)

	if len(report.Verifications) > 0 {
		b.WriteString("## Claims\n\n")
		b.WriteString("| Claim | Status | Confidence | Supporting | Contradicting |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, v := range report.Verifications {
			fmt.Fprintf(&b, "| %s | %s | %.2f | %d | %d |\n",
				escapeCell(v.OriginalClaim), v.Status, v.ConfidenceScore,
				len(v.SupportingEvidence), len(v.ContradictingEvidence))
		}
		b.WriteString("\n")
	}

	if report.Assessment != nil {
		a := report.Assessment
		b.WriteString("## Credibility\n\n")
		fmt.Fprintf(&b, "- Overall score: **%.2f** / 1.00\n", a.OverallScore)
		fmt.Fprintf(&b, "- Risk level: **%s**\n", a.RiskLevel)
		fmt.Fprintf(&b, "- Verified: %d of %d claims\n", a.VerifiedCount, a.TotalClaims)
		for _, w := range a.Warnings {
			fmt.Fprintf(&b, "- ⚠ %s\n", w)
		}
		b.WriteString("\n")
	}

	if len(report.Evidence) > 0 {
		b.WriteString("## Evidence\n\n")
		for i, item := range report.Evidence {
			fmt.Fprintf(&b, "%d. **%s** (%s, relevance %.2f)\n", i+1, item.SourceName, item.SourceType, item.RelevanceScore)
			if item.URL != "" {
				fmt.Fprintf(&b, "   <%s>\n", item.URL)
			}
			fmt.Fprintf(&b, "   > %s\n\n", escapeCell(item.Excerpt))
		}
	}

	if report.Validation.Total > 0 {
		v := report.Validation
		b.WriteString("## Validation\n\n")
		fmt.Fprintf(&b, "%d of %d evidence items valid (%.0f%%); %d hallucinated URLs, %d URL failures, %d content failures.\n\n",
			v.Valid, v.Total, v.ValidationRate*100, v.Hallucinations, v.URLFailures, v.ContentFailures)
	}

	if r.includeFooter {
		b.WriteString("---\n\nGenerated by veriscope. Scores describe evidence support, not truth.\n")
	}
	return b.String()
}

// RenderSummary prints a short terminal summary.
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Printf("\nTopic: %s\n", report.Topic)
	fmt.Printf("Evidence items: %d\n", len(report.Evidence))
	if report.Assessment != nil {
		fmt.Printf("Credibility: %.2f (%s risk)\n", report.Assessment.OverallScore, report.Assessment.RiskLevel)
	}
	for _, v := range report.Verifications {
		fmt.Printf("  [%s] %s (%.2f)\n", v.Status, v.OriginalClaim, v.ConfidenceScore)
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}
