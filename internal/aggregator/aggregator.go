package aggregator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pable/crickmetrics/internal/model"
)

var (
	// ErrEmptyInnings is returned when no ball belongs to the requested innings.
	ErrEmptyInnings = errors.New("no balls for innings")
	// ErrEmptyMatch is returned when a match has no ball rows at all.
	ErrEmptyMatch = errors.New("no balls for match")
	// ErrBadDate is returned when the start date carries no leading year.
	ErrBadDate = errors.New("unparseable start date")
)

// minWicketTypeLen is the wicket rule: a ball is a wicket when its wicket-type
// string is longer than this. Empty and placeholder markers ("", "nan") fall
// at or below it. So does "lbw".
const minWicketTypeLen = 3

// IsWicket applies the wicket rule to a single ball.
func IsWicket(b *model.Ball) bool {
	return len(b.WicketType) > minWicketTypeLen
}

// AggregatePhase sums runs (off bat + extras) and wickets over the balls whose
// index lies in phase. Malformed balls contribute nothing. The input is not
// modified and its order does not matter.
func AggregatePhase(balls []model.Ball, phase model.Phase) model.PhaseResult {
	var res model.PhaseResult
	for i := range balls {
		b := &balls[i]
		if b.Malformed || !phase.Contains(b.Index) {
			continue
		}
		res.Runs += b.RunsOffBat + b.Extras
		if IsWicket(b) {
			res.Wickets++
		}
	}
	return res
}

// AssembleInnings builds the summary for one innings of a match. balls may hold
// the whole match; rows of other innings are ignored. The record's ID, year and
// venue are left for the caller.
func AssembleInnings(balls []model.Ball, innings model.Innings) (model.InningsRecord, error) {
	selected := make([]model.Ball, 0, len(balls)/2)
	for _, b := range balls {
		if b.Innings == innings {
			selected = append(selected, b)
		}
	}
	if len(selected) == 0 {
		return model.InningsRecord{}, fmt.Errorf("innings %s: %w", innings.Tag(), ErrEmptyInnings)
	}

	first := selected[0]
	return model.InningsRecord{
		Innings:     innings,
		BattingTeam: first.BattingTeam,
		BowlingTeam: first.BowlingTeam,
		Powerplay:   AggregatePhase(selected, model.PhasePowerplay),
		Middle:      AggregatePhase(selected, model.PhaseMiddle),
		Death:       AggregatePhase(selected, model.PhaseDeath),
	}, nil
}

// AssembleMatch builds both innings records of a match and stamps them with
// the match id, year and venue taken from the first row.
func AssembleMatch(balls []model.Ball) (model.MatchInnings, error) {
	if len(balls) == 0 {
		return model.MatchInnings{}, ErrEmptyMatch
	}

	head := balls[0]
	year, err := parseYear(head.StartDate)
	if err != nil {
		return model.MatchInnings{}, fmt.Errorf("match %s: %w", head.MatchID, err)
	}

	out := model.MatchInnings{
		MatchID: head.MatchID,
		Year:    year,
		Venue:   head.Venue,
	}
	for i := range balls {
		if !balls[i].Innings.Valid() {
			out.Dropped++
		}
		if balls[i].Malformed {
			out.Malformed++
		}
	}

	for _, inn := range []model.Innings{model.InningsFirst, model.InningsSecond} {
		rec, err := AssembleInnings(balls, inn)
		if err != nil {
			return out, fmt.Errorf("match %s: %w", head.MatchID, err)
		}
		rec.ID = head.MatchID + inn.Tag()
		rec.MatchID = head.MatchID
		rec.Year = year
		rec.Venue = head.Venue
		if inn == model.InningsFirst {
			out.First = rec
		} else {
			out.Second = rec
		}
	}
	return out, nil
}

// parseYear reads the leading year of a "YYYY-MM-DD" or "YYYY/MM/DD" date.
func parseYear(date string) (int, error) {
	date = strings.TrimSpace(date)
	head, _, _ := strings.Cut(strings.ReplaceAll(date, "/", "-"), "-")
	year, err := strconv.Atoi(head)
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	return year, nil
}
