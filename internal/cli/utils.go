// Package cli provides CLI output helpers for the checklist matcher.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/matcher"
	"github.com/hans-cyfrin/solodit-checklist-matcher/pkg/utils"
)

// MatchOutputFormat is the format for match result output.
type MatchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText MatchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON MatchOutputFormat = "json"
	// OutputCompact is one line per match, for piping into other tools.
	OutputCompact MatchOutputFormat = "compact"
)

// ParseFormat maps an --output flag value to a MatchOutputFormat.
func ParseFormat(s string) (MatchOutputFormat, error) {
	switch MatchOutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	case OutputCompact:
		return OutputCompact, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json, or compact)", s)
}

// MatchResponse is the serializable result of one match query.
type MatchResponse struct {
	Query      string           `json:"query"`
	QueryTime  int64            `json:"query_time_ms"`
	TotalItems int              `json:"total_items"`
	Matches    []matcher.Result `json:"matches"`
}

// WriteMatches writes match results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteMatches(w io.Writer, response *MatchResponse, format MatchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		writeMatchesCompact(w, response)
		return nil
	default:
		writeMatchesText(w, response)
		return nil
	}
}

func writeMatchesText(w io.Writer, response *MatchResponse) {
	fmt.Fprintf(w, "\nFound %d matches in %dms (%d checklist items)\n\n",
		len(response.Matches), response.QueryTime, response.TotalItems)
	for i, m := range response.Matches {
		writeOneMatch(w, i+1, m)
	}
}

func writeOneMatch(w io.Writer, rank int, m matcher.Result) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", rank, m.Score)
	fmt.Fprintf(w, "ID: %s\n", m.ID)
	if m.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", m.Category)
	}
	fmt.Fprintf(w, "Question: %s\n", m.Question)
	if m.Description != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(m.Description, 200))
	}
	if m.Remediation != "" {
		fmt.Fprintf(w, "Remediation: %s\n", utils.Truncate(m.Remediation, 200))
	}
	if len(m.References) > 0 {
		fmt.Fprintf(w, "References: %s\n", strings.Join(m.References, ", "))
	}
	fmt.Fprintln(w)
}

func writeMatchesCompact(w io.Writer, response *MatchResponse) {
	for i, m := range response.Matches {
		fmt.Fprintf(w, "%2d  %.4f  %-16s %s\n", i+1, m.Score, m.ID, utils.Truncate(m.Question, 80))
	}
}

// PrintMatches prints match results to stdout in text format.
func PrintMatches(response *MatchResponse) {
	_ = WriteMatches(os.Stdout, response, OutputText)
}
