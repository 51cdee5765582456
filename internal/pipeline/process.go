package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/pable/crickmetrics/internal/aggregator"
	"github.com/pable/crickmetrics/internal/model"
	"github.com/pable/crickmetrics/internal/parser"
	"github.com/pable/crickmetrics/internal/venue"
)

var (
	// ErrNoResult marks a match that ended without a winner.
	ErrNoResult = errors.New("match has no result")
	// ErrAlreadyStored marks a match that is already in the store.
	ErrAlreadyStored = errors.New("match already stored")
)

// Result is the outcome of processing one match.
type Result struct {
	Files     MatchFiles
	Record    model.MatchRecord
	Dropped   int // rows outside innings 1 and 2
	Malformed int
	Err       error
}

// ProcessMatch parses both files of a match and assembles its record. The
// venue is normalised and its city filled from dir when the info file has
// none.
func ProcessMatch(files MatchFiles, dir *venue.Directory) Result {
	res := Result{Files: files}

	info, err := parser.ParseInfoFile(files.InfoPath)
	if err != nil {
		res.Err = fmt.Errorf("info: %w", err)
		return res
	}
	if !info.Complete() || info.Winner == "" {
		outcome := info.Outcome
		if outcome == "" {
			outcome = "no winner recorded"
		}
		res.Err = fmt.Errorf("%s: %w (%s)", files.MatchID, ErrNoResult, outcome)
		return res
	}

	balls, err := parser.ParseBallFile(files.BallPath)
	if err != nil {
		res.Err = fmt.Errorf("balls: %w", err)
		return res
	}
	mi, err := aggregator.AssembleMatch(balls)
	res.Dropped, res.Malformed = mi.Dropped, mi.Malformed
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", files.MatchID, err)
		return res
	}

	if mi.MatchID != "" {
		info.MatchID = mi.MatchID
	}
	if info.Date == "" && len(balls) > 0 {
		info.Date = balls[0].StartDate
	}
	rawVenue := info.Venue
	if rawVenue == "" {
		rawVenue = mi.Venue
	}
	name := venue.Normalize(rawVenue)

	res.Record = model.MatchRecord{
		Info:       info,
		Year:       mi.Year,
		Venue:      name,
		City:       dir.City(name, info.City),
		Innings:    [2]model.InningsRecord{mi.First, mi.Second},
		SourceFile: filepath.Base(files.BallPath),
	}
	return res
}
