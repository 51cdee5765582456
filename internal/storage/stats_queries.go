package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pable/crickmetrics/internal/model"
)

// Filter narrows the innings and matches a query considers. Zero values
// disable the corresponding condition.
type Filter struct {
	SinceYear int
	UntilYear int
	Event     string
	Venue     string
	Teams     []string // batting team must be one of these
	Team      string   // batting team
	Opponent  string   // bowling team
	Limit     int
}

// inningsWhere builds a WHERE clause over innings i joined to matches m.
func (f Filter) inningsWhere() (string, []any) {
	var conds []string
	var args []any
	if f.SinceYear > 0 {
		conds = append(conds, "i.year >= ?")
		args = append(args, f.SinceYear)
	}
	if f.UntilYear > 0 {
		conds = append(conds, "i.year <= ?")
		args = append(args, f.UntilYear)
	}
	if f.Event != "" {
		conds = append(conds, "m.event = ?")
		args = append(args, f.Event)
	}
	if f.Venue != "" {
		conds = append(conds, "i.venue = ?")
		args = append(args, f.Venue)
	}
	if len(f.Teams) > 0 {
		conds = append(conds, "i.batting_team IN ("+placeholders(len(f.Teams))+")")
		for _, t := range f.Teams {
			args = append(args, t)
		}
	}
	if f.Team != "" {
		conds = append(conds, "i.batting_team = ?")
		args = append(args, f.Team)
	}
	if f.Opponent != "" {
		conds = append(conds, "i.bowling_team = ?")
		args = append(args, f.Opponent)
	}
	return joinWhere(conds), args
}

// matchWhere builds a WHERE clause over matches; team conditions match either side.
func (f Filter) matchWhere(alias string) (string, []any) {
	var conds []string
	var args []any
	col := func(c string) string { return alias + "." + c }
	if f.SinceYear > 0 {
		conds = append(conds, col("year")+" >= ?")
		args = append(args, f.SinceYear)
	}
	if f.UntilYear > 0 {
		conds = append(conds, col("year")+" <= ?")
		args = append(args, f.UntilYear)
	}
	if f.Event != "" {
		conds = append(conds, col("event")+" = ?")
		args = append(args, f.Event)
	}
	if f.Venue != "" {
		conds = append(conds, col("venue")+" = ?")
		args = append(args, f.Venue)
	}
	teams := f.Teams
	if f.Team != "" {
		teams = append(teams[:len(teams):len(teams)], f.Team)
	}
	if len(teams) > 0 {
		conds = append(conds, col("match_id")+" IN (SELECT match_id FROM innings WHERE batting_team IN ("+placeholders(len(teams))+"))")
		for _, t := range teams {
			args = append(args, t)
		}
	}
	if f.Opponent != "" {
		conds = append(conds, col("match_id")+" IN (SELECT match_id FROM innings WHERE batting_team = ?)")
		args = append(args, f.Opponent)
	}
	return joinWhere(conds), args
}

func joinWhere(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

const teamRecordColumns = `
	i.batting_team,
	COUNT(*),
	SUM(CASE WHEN m.winner = i.batting_team THEN 1 ELSE 0 END),
	SUM(CASE WHEN i.innings_number = 'A' THEN 1 ELSE 0 END),
	SUM(CASE WHEN i.innings_number = 'A' AND m.winner = i.batting_team THEN 1 ELSE 0 END),
	SUM(CASE WHEN i.innings_number = 'B' THEN 1 ELSE 0 END),
	SUM(CASE WHEN i.innings_number = 'B' AND m.winner = i.batting_team THEN 1 ELSE 0 END),
	SUM(CASE WHEN i.innings_number = 'A' THEN i.total_runs ELSE 0 END),
	SUM(CASE WHEN i.innings_number = 'A' THEN i.total_wickets ELSE 0 END),
	SUM(CASE WHEN i.innings_number = 'B' THEN i.total_runs ELSE 0 END),
	SUM(CASE WHEN i.innings_number = 'B' THEN i.total_wickets ELSE 0 END)`

func (db *DB) queryTeamRecords(f Filter, byYear bool) ([]model.TeamRecord, error) {
	where, args := f.inningsWhere()
	cols := teamRecordColumns
	group := " GROUP BY i.batting_team"
	if byYear {
		cols += ", i.year"
		group += ", i.year ORDER BY i.year"
	}
	q := "SELECT " + cols + " FROM innings i JOIN matches m ON m.match_id = i.match_id" + where + group

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("team records: %w", err)
	}
	defer rows.Close()

	var out []model.TeamRecord
	for rows.Next() {
		var r model.TeamRecord
		dest := []any{&r.Team, &r.Matches, &r.Wins,
			&r.BatFirstMatches, &r.BatFirstWins, &r.BowlFirstMatches, &r.BowlFirstWins,
			&r.BatFirstRuns, &r.BatFirstWickets, &r.BowlFirstRuns, &r.BowlFirstWickets}
		if byYear {
			dest = append(dest, &r.Year)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TeamRecords returns one win/loss record per batting team over every year
// in f, sorted by win percentage, then matches played, then name.
func (db *DB) TeamRecords(f Filter) ([]model.TeamRecord, error) {
	out, err := db.queryTeamRecords(f, false)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.WinPct() != b.WinPct() {
			return a.WinPct() > b.WinPct()
		}
		if a.Matches != b.Matches {
			return a.Matches > b.Matches
		}
		return a.Team < b.Team
	})
	return out, nil
}

// TeamTrend returns per-year records for a single team, oldest year first.
// f.Opponent restricts the matches to those against one team.
func (db *DB) TeamTrend(team string, f Filter) ([]model.TeamRecord, error) {
	f.Team = team
	f.Teams = nil
	return db.queryTeamRecords(f, true)
}

// PhaseSplits returns per-year, per-innings phase sums for a team.
func (db *DB) PhaseSplits(team string, f Filter) ([]model.PhaseSplit, error) {
	f.Team = team
	f.Teams = nil
	where, args := f.inningsWhere()
	q := `
		SELECT i.batting_team, i.year, i.innings_number, COUNT(*),
		       SUM(i.pp_runs), SUM(i.mid_runs), SUM(i.death_runs),
		       SUM(i.pp_wickets), SUM(i.mid_wickets), SUM(i.death_wickets)
		FROM innings i JOIN matches m ON m.match_id = i.match_id` + where + `
		GROUP BY i.batting_team, i.year, i.innings_number
		ORDER BY i.year, i.innings_number`

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("phase splits: %w", err)
	}
	defer rows.Close()

	var out []model.PhaseSplit
	for rows.Next() {
		var s model.PhaseSplit
		var tag string
		if err := rows.Scan(&s.Team, &s.Year, &tag, &s.Count,
			&s.Runs[model.PhasePowerplay], &s.Runs[model.PhaseMiddle], &s.Runs[model.PhaseDeath],
			&s.Wickets[model.PhasePowerplay], &s.Wickets[model.PhaseMiddle], &s.Wickets[model.PhaseDeath]); err != nil {
			return nil, err
		}
		s.Innings = model.ParseInningsTag(tag)
		out = append(out, s)
	}
	return out, rows.Err()
}

// VenueAverages returns per-venue, per-innings sums for venues with at least
// minInnings innings, highest average score first.
func (db *DB) VenueAverages(f Filter, minInnings int) ([]model.VenueAverage, error) {
	where, args := f.inningsWhere()
	q := `
		SELECT i.venue, m.city, i.innings_number, COUNT(*),
		       SUM(i.total_runs), SUM(i.total_wickets), SUM(i.mid_runs), SUM(i.death_runs)
		FROM innings i JOIN matches m ON m.match_id = i.match_id` + where + `
		GROUP BY i.venue, m.city, i.innings_number
		HAVING COUNT(*) >= ?`
	args = append(args, minInnings)

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("venue averages: %w", err)
	}
	defer rows.Close()

	var out []model.VenueAverage
	for rows.Next() {
		var v model.VenueAverage
		var tag string
		if err := rows.Scan(&v.Venue, &v.City, &tag, &v.Count,
			&v.TotalRuns, &v.Wickets, &v.MiddleRuns, &v.DeathRuns); err != nil {
			return nil, err
		}
		v.Innings = model.ParseInningsTag(tag)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.AvgScore() != b.AvgScore() {
			return a.AvgScore() > b.AvgScore()
		}
		if a.Venue != b.Venue {
			return a.Venue < b.Venue
		}
		return a.Innings < b.Innings
	})
	return out, nil
}

// Events returns the distinct event names with their match counts.
func (db *DB) Events() (map[string]int, error) {
	rows, err := db.conn.Query("SELECT event, COUNT(*) FROM matches WHERE event != '' GROUP BY event")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, rows.Err()
}
