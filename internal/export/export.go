// Package export writes the combined innings table to files.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pable/crickmetrics/internal/model"
)

// Format is an output file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "jsonl"
	FormatParquet Format = "parquet"
)

// Columns is the combined-table header, in output order.
var Columns = []string{
	"id", "year", "venue", "team_A", "team_B",
	"Runs_in_Powerplay", "Wickets_lost_in_Powerplay",
	"Runs_in_middle_overs", "Wickets_lost_in_middle_overs",
	"Runs_in_Death_overs", "Wickets_lost_in_death_overs",
	"Total_Score_A", "Total_Wicket_A",
	"city", "event", "toss_winner", "toss_decision", "winner",
	"match_id", "innings_number",
}

// ParseFormat accepts a format name; "json" is an alias for JSON lines.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json", "jsonl", "ndjson":
		return FormatJSON, nil
	case "parquet", "pq":
		return FormatParquet, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, jsonl or parquet)", s)
}

// FormatFromPath guesses the format from a file extension, defaulting to CSV.
// A trailing ".zst" or ".gz" is ignored, so "t20.csv.zst" is CSV.
func FormatFromPath(path string) Format {
	ext := filepath.Ext(stripCompression(path))
	f, err := ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		return FormatCSV
	}
	return f
}

// Options tunes Write.
type Options struct {
	Compression string // parquet only: snappy, gzip or none
}

// Write encodes rows to w in format f.
func Write(w io.Writer, f Format, rows []model.InningsRow, opts Options) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSONLines(w, rows)
	case FormatParquet:
		return WriteParquet(w, rows, opts.Compression)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// record renders r in Columns order.
func record(r *model.InningsRow) []string {
	itoa := strconv.Itoa
	return []string{
		r.ID, itoa(r.Year), r.Venue, r.BattingTeam, r.BowlingTeam,
		itoa(r.Powerplay.Runs), itoa(r.Powerplay.Wickets),
		itoa(r.Middle.Runs), itoa(r.Middle.Wickets),
		itoa(r.Death.Runs), itoa(r.Death.Wickets),
		itoa(r.TotalRuns()), itoa(r.TotalWickets()),
		r.City, r.Event, r.TossWinner, r.TossDecision, r.Winner,
		r.MatchID, r.Innings.Tag(),
	}
}
