package report

import (
	"strings"

	"trafficledger/internal/storage"
)

// Metrics summarises the whole record set for the Home page.
type Metrics struct {
	Stops    int `json:"total_stops"`
	Arrests  int `json:"total_arrests"`
	Warnings int `json:"total_warnings"`
}

// Empty reports whether there is nothing to display. Callers hide the
// metrics block in that case.
func (m Metrics) Empty() bool {
	return m.Stops == 0
}

// ComputeMetrics classifies outcomes by case-insensitive substring, so an
// outcome mentioning both words counts as an arrest and as a warning.
func ComputeMetrics(stops []storage.Stop) Metrics {
	m := Metrics{Stops: len(stops)}
	for _, stop := range stops {
		if !stop.StopOutcome.Valid {
			continue
		}
		outcome := strings.ToLower(stop.StopOutcome.String)
		if strings.Contains(outcome, "arrest") {
			m.Arrests++
		}
		if strings.Contains(outcome, "warning") {
			m.Warnings++
		}
	}
	return m
}
