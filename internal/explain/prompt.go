// Package explain asks a generative provider to justify a classification
// in plain language. The rationale is advisory: it never changes the
// verdict and never fails the request.
package explain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nordlys-media/veracity/internal/domain"
)

// Output and prompt bounds.
const (
	DefaultMaxPromptChars    = 4000
	DefaultMaxRationaleChars = 1200

	maxPromptFeatures  = 6
	maxPromptHeadlines = 5
	maxSummaryChars    = 100
)

// PromptInput carries everything the prompt may embed.
type PromptInput struct {
	Text           string
	Classification domain.ClassificationResult
	Headlines      domain.Signal[domain.HeadlineMatch]
}

// BuildPrompt renders the bounded prompt: verdict, influential terms,
// headline evidence when present, and as much of the article text as fits
// under maxChars.
func BuildPrompt(in PromptInput, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxPromptChars
	}

	var b strings.Builder
	b.WriteString("You are reviewing an automated news classifier's verdict.\n\n")
	fmt.Fprintf(&b, "Classifier verdict: %s (probability %.2f)\n", in.Classification.Label, in.Classification.Probability)

	if len(in.Classification.Features) > 0 {
		b.WriteString("Influential terms: ")
		for i, f := range in.Classification.Features {
			if i == maxPromptFeatures {
				break
			}
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (%.3f)", f.Token, f.Weight)
		}
		b.WriteString("\n")
	}

	if matches, ok := in.Headlines.Value(); ok && len(matches) > 0 {
		b.WriteString("\nRecent headlines related to the claim:\n")
		for i, h := range matches {
			if i == maxPromptHeadlines {
				break
			}
			fmt.Fprintf(&b, "- %s (similarity %.2f)\n", h.Title, h.Similarity)
		}
	}

	const closing = "\nIn one short paragraph, explain whether the evidence supports the verdict. Respond in plain text."
	frame := b.String()

	budget := maxChars - len([]rune(frame)) - len([]rune(closing)) - len("\nArticle text:\n")
	excerpt := truncateRunes(in.Text, budget)

	var out strings.Builder
	out.WriteString(frame)
	if excerpt != "" {
		out.WriteString("\nArticle text:\n")
		out.WriteString(excerpt)
	}
	out.WriteString(closing)
	return out.String()
}

// ValidateRationale checks a provider response parses as plain text and
// trims it to the length cap. Control characters beyond ordinary
// whitespace mean the response is unusable.
func ValidateRationale(raw string, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxRationaleChars
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("empty rationale")
	}
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return "", fmt.Errorf("rationale contains control character %q", r)
		}
	}
	return truncateRunes(text, maxChars), nil
}

// deriveSummary renders the short one-line form of a rationale.
func deriveSummary(label domain.Label, rationale string) string {
	first := rationale
	for _, stop := range []string{". ", ".\n", "!\n", "! ", "?\n", "? "} {
		if idx := strings.Index(first, stop); idx >= 0 {
			first = first[:idx+1]
		}
	}
	first = strings.TrimSpace(strings.TrimSuffix(first, "."))
	summary := fmt.Sprintf("likely %s: %s", label, first)
	return truncateRunes(summary, maxSummaryChars)
}

func truncateRunes(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return strings.TrimSpace(string(runes[:maxChars]))
}
