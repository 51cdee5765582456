package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pable/crickmetrics/internal/model"
)

// MatchExists returns true if a match with the given id is already stored.
func (db *DB) MatchExists(matchID string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListMatchIDs returns every stored match id.
func (db *DB) ListMatchIDs() ([]string, error) {
	rows, err := db.conn.Query("SELECT match_id FROM matches")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// InsertMatch stores a match and both of its innings in one transaction.
// Re-inserting a match replaces it.
func (db *DB) InsertMatch(rec model.MatchRecord, runID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	info := rec.Info
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO matches(match_id, match_date, year, season, event, venue, city,
			toss_winner, toss_decision, winner, source_file, ingest_run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.MatchID, info.Date, rec.Year, info.Season, info.Event, rec.Venue, rec.City,
		info.TossWinner, info.TossDecision, info.Winner, rec.SourceFile, runID,
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", info.MatchID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO innings(
			id, match_id, innings_number, year, venue, batting_team, bowling_team,
			pp_runs, pp_wickets, mid_runs, mid_wickets, death_runs, death_wickets,
			total_runs, total_wickets
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rec.Rows() {
		_, err = stmt.Exec(
			r.ID, info.MatchID, r.Innings.Tag(), r.Year, r.Venue, r.BattingTeam, r.BowlingTeam,
			r.Powerplay.Runs, r.Powerplay.Wickets,
			r.Middle.Runs, r.Middle.Wickets,
			r.Death.Runs, r.Death.Wickets,
			r.TotalRuns(), r.TotalWickets(),
		)
		if err != nil {
			return fmt.Errorf("insert innings %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

const matchSummarySelect = `
	SELECT m.match_id, m.match_date, m.year, m.event, m.venue, m.city, m.winner, m.source_file,
	       COALESCE(a.batting_team, ''), COALESCE(a.total_runs, 0), COALESCE(a.total_wickets, 0),
	       COALESCE(b.batting_team, ''), COALESCE(b.total_runs, 0), COALESCE(b.total_wickets, 0)
	FROM matches m
	LEFT JOIN innings a ON a.match_id = m.match_id AND a.innings_number = 'A'
	LEFT JOIN innings b ON b.match_id = m.match_id AND b.innings_number = 'B'`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatchSummary(sc rowScanner) (model.MatchSummary, error) {
	var s model.MatchSummary
	var runsA, wktsA, runsB, wktsB int
	err := sc.Scan(&s.MatchID, &s.Date, &s.Year, &s.Event, &s.Venue, &s.City, &s.Winner, &s.SourceFile,
		&s.TeamA, &runsA, &wktsA, &s.TeamB, &runsB, &wktsB)
	if err != nil {
		return s, err
	}
	s.ScoreA = fmt.Sprintf("%d/%d", runsA, wktsA)
	s.ScoreB = fmt.Sprintf("%d/%d", runsB, wktsB)
	return s, nil
}

// ListMatches returns stored match summaries matching f, newest first.
func (db *DB) ListMatches(f Filter) ([]model.MatchSummary, error) {
	where, args := f.matchWhere("m")
	q := matchSummarySelect + where + " ORDER BY m.match_date DESC, m.match_id DESC"
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		s, err := scanMatchSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMatchByPrefix finds the first match whose id starts with the given prefix.
func (db *DB) GetMatchByPrefix(prefix string) (*model.MatchSummary, error) {
	s, err := scanMatchSummary(db.conn.QueryRow(
		matchSummarySelect+" WHERE m.match_id LIKE ? ORDER BY m.match_id LIMIT 1", prefix+"%"))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const inningsRowSelect = `
	SELECT i.id, i.match_id, i.innings_number, i.year, i.venue, i.batting_team, i.bowling_team,
	       i.pp_runs, i.pp_wickets, i.mid_runs, i.mid_wickets, i.death_runs, i.death_wickets,
	       m.city, m.event, m.toss_winner, m.toss_decision, m.winner
	FROM innings i
	JOIN matches m ON m.match_id = i.match_id`

func scanInningsRow(sc rowScanner) (model.InningsRow, error) {
	var r model.InningsRow
	var tag string
	err := sc.Scan(&r.ID, &r.MatchID, &tag, &r.Year, &r.Venue, &r.BattingTeam, &r.BowlingTeam,
		&r.Powerplay.Runs, &r.Powerplay.Wickets,
		&r.Middle.Runs, &r.Middle.Wickets,
		&r.Death.Runs, &r.Death.Wickets,
		&r.City, &r.Event, &r.TossWinner, &r.TossDecision, &r.Winner)
	r.Innings = model.ParseInningsTag(tag)
	return r, err
}

// GetInnings returns the innings rows of one match, batting first first.
func (db *DB) GetInnings(matchID string) ([]model.InningsRow, error) {
	return db.queryInningsRows(inningsRowSelect+" WHERE i.match_id = ? ORDER BY i.innings_number", matchID)
}

// InningsRows returns every combined-table row matching f, in match date order.
func (db *DB) InningsRows(f Filter) ([]model.InningsRow, error) {
	where, args := f.inningsWhere()
	q := inningsRowSelect + where + " ORDER BY m.match_date, i.match_id, i.innings_number"
	return db.queryInningsRows(q, args...)
}

func (db *DB) queryInningsRows(q string, args ...any) ([]model.InningsRow, error) {
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.InningsRow
	for rows.Next() {
		r, err := scanInningsRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteMatch removes a match and its innings. It reports whether a row existed.
func (db *DB) DeleteMatch(matchID string) (bool, error) {
	res, err := db.conn.Exec("DELETE FROM matches WHERE match_id = ?", matchID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// InsertIngestRun records the outcome of an ingest invocation.
func (db *DB) InsertIngestRun(run model.IngestRun) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO ingest_runs(id, started_at, data_dir, seen, stored, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.DataDir, run.Seen, run.Stored, run.Skipped, run.Failed,
	)
	return err
}

// ListIngestRuns returns the most recent ingest runs, newest first.
func (db *DB) ListIngestRuns(limit int) ([]model.IngestRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.Query(`
		SELECT id, started_at, data_dir, seen, stored, skipped, failed
		FROM ingest_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.IngestRun
	for rows.Next() {
		var r model.IngestRun
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.DataDir, &r.Seen, &r.Stored, &r.Skipped, &r.Failed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Overview summarises the database contents.
type Overview struct {
	Matches      int
	Innings      int
	Teams        int
	Venues       int
	Events       int
	EarliestDate string
	LatestDate   string
	IngestRuns   int
}

// GetDBOverview returns headline counts for the summary command.
func (db *DB) GetDBOverview() (Overview, error) {
	var o Overview
	err := db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(MIN(match_date), ''), COALESCE(MAX(match_date), ''),
		       COUNT(DISTINCT venue), COUNT(DISTINCT NULLIF(event, ''))
		FROM matches`).Scan(&o.Matches, &o.EarliestDate, &o.LatestDate, &o.Venues, &o.Events)
	if err != nil {
		return o, fmt.Errorf("overview matches: %w", err)
	}
	err = db.conn.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT batting_team) FROM innings`).Scan(&o.Innings, &o.Teams)
	if err != nil {
		return o, fmt.Errorf("overview innings: %w", err)
	}
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM ingest_runs`).Scan(&o.IngestRuns); err != nil {
		return o, fmt.Errorf("overview ingest runs: %w", err)
	}
	return o, nil
}

// QueryRaw runs an arbitrary statement and returns the column names and every
// row rendered as strings. NULL renders as "NULL".
func (db *DB) QueryRaw(query string, args ...any) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
