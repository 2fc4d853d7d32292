package synthesis

import (
	"strings"
	"testing"
)

func TestParseCompletionStructuredOutput(t *testing.T) {
	text := "## Risk Assessment\n" +
		"High humidity and rising temperatures favour downy mildew in Chenin Blanc.\n" +
		"Historical precedent from 2019 supports elevated risk.\n" +
		"\n" +
		"## Recommended Actions\n" +
		"- Apply preventative fungicide within 48 hours.\n" +
		"- Monitor canopy humidity daily.\n" +
		"- Improve airflow in Block B.\n"

	summary, recs := parseCompletion(text)

	if !strings.Contains(summary, "downy mildew") || strings.Contains(summary, "fungicide") {
		t.Fatalf("summary not split from actions: %q", summary)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %v", recs)
	}
	if recs[0] != "Apply preventative fungicide within 48 hours." {
		t.Fatalf("list marker not stripped: %q", recs[0])
	}
}

func TestParseCompletionNumberedAndBoldVariants(t *testing.T) {
	text := "**Risk Assessment**\n" +
		"Moderate stress indicated by NDVI readings.\n" +
		"\n" +
		"**Recommended Actions:**\n" +
		"1. Increase irrigation in stressed blocks.\n" +
		"2) Re-scan vegetation in one week.\n"

	summary, recs := parseCompletion(text)
	if summary != "Moderate stress indicated by NDVI readings." {
		t.Fatalf("unexpected summary %q", summary)
	}
	if len(recs) != 2 || recs[1] != "Re-scan vegetation in one week." {
		t.Fatalf("numbered markers not stripped: %v", recs)
	}
}

func TestParseCompletionColonHeadings(t *testing.T) {
	text := "Risk Assessment:\nFrost risk is low this week.\n\nRecommendations:\n- None required.\n"

	summary, recs := parseCompletion(text)
	if summary != "Frost risk is low this week." {
		t.Fatalf("unexpected summary %q", summary)
	}
	if len(recs) != 1 || recs[0] != "None required." {
		t.Fatalf("unexpected recommendations %v", recs)
	}
}

func TestParseCompletionFallbackToRawText(t *testing.T) {
	text := "The model rambled without any of the expected sections but the answer still matters."

	summary, recs := parseCompletion(text)
	if summary != text {
		t.Fatalf("fallback must keep the whole completion, got %q", summary)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no recommendations, got %v", recs)
	}
}

func TestParseCompletionEmpty(t *testing.T) {
	summary, recs := parseCompletion("   \n  ")
	if summary != "" || recs != nil {
		t.Fatalf("expected empty result, got %q / %v", summary, recs)
	}
}
