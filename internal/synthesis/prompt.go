package synthesis

import (
	"fmt"
	"strings"

	"github.com/agri-intel/farm-risk-analysis/internal/environment"
	"github.com/agri-intel/farm-risk-analysis/internal/precedent"
)

// Prompt construction is fixed and versioned so behaviour under a given input
// is deterministic and testable. Bump promptVersion when the template changes.
const promptVersion = "v1"

const systemPrompt = "You are an expert agronomist advising farmers. " +
	"Provide a clear, actionable risk analysis based strictly on the data provided. " +
	"Where a data point is marked unknown, say so instead of guessing. " +
	"Format the response with a \"Risk Assessment\" section followed by a " +
	"\"Recommended Actions\" section containing a short list of concrete actions."

const (
	// maxPromptPrecedents caps the narratives included so prompt size stays
	// bounded no matter how many matches the store returns.
	maxPromptPrecedents = 5
	// maxNarrativeRunes truncates any single precedent narrative.
	maxNarrativeRunes = 480
)

// buildPrompt renders the environmental snapshot, crop type, and precedent
// narratives (similarity descending) into the user prompt. Unknown fields are
// explicitly marked rather than omitted.
func buildPrompt(cropType string, snap environment.Snapshot, precedents []precedent.Precedent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "DATA (prompt %s):\n", promptVersion)
	fmt.Fprintf(&b, "- Location: %s\n", snap.Location)
	fmt.Fprintf(&b, "- Crop type: %s\n", cropType)

	w := snap.Weather
	fmt.Fprintf(&b, "- Temperature: %s\n", formatMetric(weatherField(w, func(o *environment.WeatherObservation) *float64 { return o.TemperatureC }), "%.1f C"))
	fmt.Fprintf(&b, "- Precipitation: %s\n", formatMetric(weatherField(w, func(o *environment.WeatherObservation) *float64 { return o.PrecipMM }), "%.1f mm"))
	fmt.Fprintf(&b, "- Humidity: %s\n", formatMetric(weatherField(w, func(o *environment.WeatherObservation) *float64 { return o.HumidityPct }), "%.0f%%"))
	fmt.Fprintf(&b, "- Wind: %s\n", formatMetric(weatherField(w, func(o *environment.WeatherObservation) *float64 { return o.WindSpeedMS }), "%.1f m/s"))
	if w != nil && w.Condition != "" && w.Condition != environment.ConditionUnknown {
		fmt.Fprintf(&b, "- Conditions: %s\n", w.Condition)
	} else {
		b.WriteString("- Conditions: unknown\n")
	}

	s := snap.Satellite
	fmt.Fprintf(&b, "- Vegetation index (NDVI): %s\n", formatMetric(satelliteField(s, func(o *environment.SatelliteObservation) *float64 { return o.NDVI }), "%.2f"))
	fmt.Fprintf(&b, "- Soil moisture: %s\n", formatMetric(satelliteField(s, func(o *environment.SatelliteObservation) *float64 { return o.SoilMoisture }), "%.2f"))

	b.WriteString("\nHISTORICAL PRECEDENTS (most similar first):\n")
	if len(precedents) == 0 {
		b.WriteString("- none available\n")
	} else {
		n := len(precedents)
		if n > maxPromptPrecedents {
			n = maxPromptPrecedents
		}
		for i := 0; i < n; i++ {
			p := precedents[i]
			fmt.Fprintf(&b, "%d. (similarity %.2f) %s\n", i+1, p.Similarity, truncate(p.OutcomeNarrative, maxNarrativeRunes))
		}
	}

	b.WriteString("\nBased on this data, provide the Risk Assessment and Recommended Actions for this crop. Be concise.")
	return b.String()
}

func weatherField(w *environment.WeatherObservation, pick func(*environment.WeatherObservation) *float64) *float64 {
	if w == nil {
		return nil
	}
	return pick(w)
}

func satelliteField(s *environment.SatelliteObservation, pick func(*environment.SatelliteObservation) *float64) *float64 {
	if s == nil {
		return nil
	}
	return pick(s)
}

func formatMetric(v *float64, format string) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf(format, *v)
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "…"
}
