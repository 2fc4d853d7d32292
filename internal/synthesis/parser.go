package synthesis

import (
	"strings"

	"github.com/agri-intel/farm-risk-analysis/internal/common"
)

// parseCompletion splits a model completion into the risk-assessment summary
// and the list of recommended actions. The parser is forgiving: when the
// expected headings are absent, the whole completion becomes the summary and
// the recommendation list stays empty. The model's answer is never discarded.
func parseCompletion(text string) (summary string, recommendations []string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	var (
		summaryLines []string
		inActions    bool
		sawHeading   bool
	)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		if isHeading(trimmed) && common.HasAny(lower, "recommended action", "recommendation") {
			inActions = true
			sawHeading = true
			continue
		}
		if isHeading(trimmed) && common.HasAny(lower, "risk assessment", "risk analysis") {
			inActions = false
			sawHeading = true
			continue
		}

		if trimmed == "" {
			if !inActions && len(summaryLines) > 0 {
				summaryLines = append(summaryLines, "")
			}
			continue
		}

		if inActions {
			if item := stripListMarker(trimmed); item != "" {
				recommendations = append(recommendations, item)
			}
			continue
		}
		summaryLines = append(summaryLines, trimmed)
	}

	summary = strings.TrimSpace(strings.Join(summaryLines, "\n"))

	// No recognizable structure: keep the entire completion as the summary.
	if !sawHeading || summary == "" {
		return text, recommendations
	}
	return summary, recommendations
}

// isHeading matches markdown-style or bare section headings, e.g.
// "## Risk Assessment", "**Recommended Actions**", "Risk Assessment:".
func isHeading(line string) bool {
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "#") {
		return true
	}
	if strings.HasPrefix(line, "**") && strings.HasSuffix(strings.TrimSuffix(line, ":"), "**") {
		return true
	}
	// Short line ending in a colon reads as a heading.
	return strings.HasSuffix(line, ":") && len(line) <= 40
}

// stripListMarker removes leading bullet or numbered-list markers.
func stripListMarker(line string) string {
	s := strings.TrimLeft(line, "-*• \t")
	if s == line {
		// Numbered marker like "1." or "2)".
		i := 0
		for i < len(line) && line[i] >= '0' && line[i] <= '9' {
			i++
		}
		if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
			s = line[i+1:]
		}
	}
	return strings.TrimSpace(s)
}
