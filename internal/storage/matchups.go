package storage

import (
	"sort"

	"github.com/pable/crickmetrics/internal/model"
)

type venueKey struct {
	venue, city string
}

type matchupKey struct {
	team, opponent string
	won            bool
}

// WinComposition classifies every match in f against its venue's average
// first-innings score and counts, per team, opponent and result, how often
// the team did well with bat and ball, bat only or ball only. Par scores use
// the year, event and venue conditions of f; the team conditions only select
// which sides are reported.
func (db *DB) WinComposition(f Filter) ([]model.Matchup, error) {
	base := Filter{SinceYear: f.SinceYear, UntilYear: f.UntilYear, Event: f.Event, Venue: f.Venue}

	avgs, err := db.VenueAverages(base, 1)
	if err != nil {
		return nil, err
	}
	par := make(map[venueKey]int)
	for i := range avgs {
		if avgs[i].Innings == model.InningsFirst {
			par[venueKey{avgs[i].Venue, avgs[i].City}] = avgs[i].AvgScore()
		}
	}

	rows, err := db.InningsRows(base)
	if err != nil {
		return nil, err
	}
	type pair struct{ first, second *model.InningsRow }
	matches := make(map[string]*pair)
	var order []string
	for i := range rows {
		r := &rows[i]
		p, ok := matches[r.MatchID]
		if !ok {
			p = &pair{}
			matches[r.MatchID] = p
			order = append(order, r.MatchID)
		}
		if r.Innings == model.InningsFirst {
			p.first = r
		} else {
			p.second = r
		}
	}

	counts := make(map[matchupKey]*model.Matchup)
	add := func(team, opponent, winner string, perf model.Performance) {
		if !f.reports(team, opponent) {
			return
		}
		k := matchupKey{team, opponent, team == winner}
		m, ok := counts[k]
		if !ok {
			m = &model.Matchup{Team: team, Opponent: opponent, Won: k.won}
			counts[k] = m
		}
		m.Add(perf)
	}
	for _, id := range order {
		p := matches[id]
		if p.first == nil || p.second == nil {
			continue
		}
		a, b := p.first, p.second
		score, ok := par[venueKey{a.Venue, a.City}]
		batFirst, chase := model.ClassifyInnings(a.TotalRuns(), b.TotalRuns(), score, ok)
		add(a.BattingTeam, a.BowlingTeam, a.Winner, batFirst)
		add(b.BattingTeam, b.BowlingTeam, b.Winner, chase)
	}

	out := make([]model.Matchup, 0, len(counts))
	for _, m := range counts {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		if a.Opponent != b.Opponent {
			return a.Opponent < b.Opponent
		}
		return a.Won && !b.Won
	})
	return out, nil
}

// reports says whether a side's matchup passes the team conditions of f.
func (f Filter) reports(team, opponent string) bool {
	if f.Team != "" && team != f.Team {
		return false
	}
	if f.Opponent != "" && opponent != f.Opponent {
		return false
	}
	if len(f.Teams) == 0 {
		return true
	}
	for _, t := range f.Teams {
		if t == team {
			return true
		}
	}
	return false
}
