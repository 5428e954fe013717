package summarizer

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Formatter renders a Summary as file content.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) string

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// JSONFormatter renders the summary as indented JSON for tooling that
// collects run statistics.
type JSONFormatter struct{}

// Format implements the Formatter interface.
func (JSONFormatter) Format(s *Summary) string {
	doc := struct {
		*Summary
		DurationSeconds float64 `json:"duration_seconds"`
	}{s, s.Run.Duration().Seconds()}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "{}\n"
	}
	return string(data) + "\n"
}

// ForPath picks JSON for a ".json" path and fallback otherwise.
func ForPath(path string, fallback Formatter) Formatter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSONFormatter{}
	}
	return fallback
}
