package synthesis

import (
	"fmt"
	"strings"
)

// DataSource names an upstream that actually contributed to a report.
type DataSource string

const (
	DataSourceWeather    DataSource = "weather"
	DataSourceSatellite  DataSource = "satellite"
	DataSourcePrecedents DataSource = "precedents"
)

// Report is the terminal artifact of one analysis request. Degraded is true
// iff any of weather, satellite, or precedent retrieval produced no usable
// data; the report is still best-effort from whatever subset succeeded.
type Report struct {
	Summary         string       `json:"summary"`
	Recommendations []string     `json:"recommendations"`
	DataSourcesUsed []DataSource `json:"dataSourcesUsed"`
	Degraded        bool         `json:"degraded"`
}

// UsedSource reports whether the given source contributed to the report.
func (r Report) UsedSource(src DataSource) bool {
	for _, s := range r.DataSourcesUsed {
		if s == src {
			return true
		}
	}
	return false
}

// RenderText flattens the report into the human-readable form returned to the
// caller: summary first, then the recommendations in order.
func (r Report) RenderText() string {
	var b strings.Builder
	b.WriteString(r.Summary)

	if len(r.Recommendations) > 0 {
		b.WriteString("\n\nRecommended actions:\n")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
		}
	}

	if r.Degraded {
		b.WriteString("\nNote: this analysis was produced with incomplete data; some sources were unavailable.")
	}

	return strings.TrimRight(b.String(), "\n")
}
