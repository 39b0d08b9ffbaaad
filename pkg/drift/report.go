package drift

import (
	"time"
)

// Report is the immutable outcome of one detection run. Reports are
// persisted one file per run and never overwritten.
type Report struct {
	ID              string       `json:"id"`
	Timestamp       time.Time    `json:"timestamp"`
	BaselineVersion string       `json:"baselineVersion"`
	LiveVersion     string       `json:"liveVersion"`
	Drifts          []Drift      `json:"drifts"`
	Suggestions     []Suggestion `json:"suggestions"`

	// Warnings aggregates non-fatal findings: unmatched forms,
	// orphaned path parameters, skipped files, webhook failures.
	Warnings []string `json:"warnings,omitempty"`
}

// Summary holds drift counts by severity.
type Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Summary tallies the report's drifts by severity.
func (r *Report) Summary() Summary {
	var s Summary
	s.Total = len(r.Drifts)
	for _, d := range r.Drifts {
		switch d.Severity {
		case Critical:
			s.Critical++
		case High:
			s.High++
		case Medium:
			s.Medium++
		case Low:
			s.Low++
		}
	}
	return s
}
