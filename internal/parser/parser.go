package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pable/crickmetrics/internal/model"
)

// ErrMissingColumn is returned when a ball file lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Columns read from a ball-by-ball file. Any others are ignored.
var ballColumns = []string{
	"match_id", "start_date", "venue", "innings", "ball",
	"batting_team", "bowling_team", "runs_off_bat", "extras", "wicket_type",
}

const infoSuffix = "_info.csv"

// ParseBallFile reads the ball-by-ball file at path.
func ParseBallFile(path string) ([]model.Ball, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ball file: %w", err)
	}
	defer f.Close()

	balls, err := ParseBalls(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return balls, nil
}

// ParseBalls reads ball rows from a CSV stream with a header line.
//
// A row whose ball index, runs or extras cannot be parsed is kept with
// Malformed set so the caller can count it; it never fails the file. Empty
// runs/extras cells read as zero. An unparseable innings marker reads as
// model.InningsUnknown.
func ParseBalls(r io.Reader) ([]model.Ball, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range ballColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	get := func(rec []string, name string) string {
		i := col[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []model.Ball
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		b := model.Ball{
			MatchID:     get(rec, "match_id"),
			StartDate:   get(rec, "start_date"),
			Venue:       get(rec, "venue"),
			BattingTeam: get(rec, "batting_team"),
			BowlingTeam: get(rec, "bowling_team"),
			WicketType:  get(rec, "wicket_type"),
		}
		if n, err := strconv.Atoi(get(rec, "innings")); err == nil {
			b.Innings = model.Innings(n)
		}

		var ok bool
		if b.Index, ok = parseIndex(get(rec, "ball")); !ok {
			b.Malformed = true
		}
		if b.RunsOffBat, ok = parseCount(get(rec, "runs_off_bat")); !ok {
			b.Malformed = true
		}
		if b.Extras, ok = parseCount(get(rec, "extras")); !ok {
			b.Malformed = true
		}
		out = append(out, b)
	}
	return out, nil
}

// parseIndex parses a ball index such as "6.1". NaN, infinities and negative
// values are rejected.
func parseIndex(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// parseCount parses a non-negative integer cell. Empty cells are zero.
// Counts written as floats ("4.0") are accepted.
func parseCount(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// ParseInfoFile reads the match info file at path. The match id is taken from
// the file name ("<id>_info.csv").
func ParseInfoFile(path string) (model.MatchInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.MatchInfo{}, fmt.Errorf("open info file: %w", err)
	}
	defer f.Close()

	info, err := ParseInfo(f)
	if err != nil {
		return model.MatchInfo{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	info.MatchID = strings.TrimSuffix(filepath.Base(path), infoSuffix)
	return info, nil
}

// ParseInfo reads "info,<key>,<value>" rows. When a key repeats, the first
// value wins.
func ParseInfo(r io.Reader) (model.MatchInfo, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	seen := make(map[string]string)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.MatchInfo{}, fmt.Errorf("read info: %w", err)
		}
		if len(rec) < 3 {
			continue
		}
		key := strings.TrimSpace(rec[1])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = strings.TrimSpace(rec[2])
	}

	return model.MatchInfo{
		Date:         seen["date"],
		Season:       seen["season"],
		Event:        seen["event"],
		Venue:        seen["venue"],
		City:         seen["city"],
		TossWinner:   seen["toss_winner"],
		TossDecision: seen["toss_decision"],
		Winner:       seen["winner"],
		Outcome:      seen["outcome"],
	}, nil
}

// InfoPath returns the info file that pairs with a ball file.
func InfoPath(ballPath string) string {
	return strings.TrimSuffix(ballPath, ".csv") + infoSuffix
}

// IsBallFile reports whether name looks like a ball-by-ball file rather than
// an info file or something unrelated.
func IsBallFile(name string) bool {
	return strings.HasSuffix(name, ".csv") && !strings.HasSuffix(name, infoSuffix)
}
