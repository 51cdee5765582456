package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/report"
	"github.com/pable/crickmetrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the innings database",
	Long: `Query the stored matches and innings directly. Each match has two innings
rows, tagged 'A' for the side batting first and 'B' for the chase; phase
columns hold runs and wickets for overs 1-6 (pp_), 7-16 (mid_) and 17-20
(death_).

Tables:
  matches(match_id, match_date, year, season, event, venue, city,
    toss_winner, toss_decision, winner, source_file, ingest_run)
  innings(id, match_id, innings_number, year, venue, batting_team, bowling_team,
    pp_runs, pp_wickets, mid_runs, mid_wickets, death_runs, death_wickets,
    total_runs, total_wickets)
  ingest_runs(id, started_at, data_dir, seen, stored, skipped, failed)

Examples:
  # death-overs scoring by team
  crickmetrics sql "SELECT batting_team, AVG(death_runs) FROM innings GROUP BY 1 ORDER BY 2 DESC"

  # how often the toss winner chose to field and won
  crickmetrics sql "SELECT COUNT(*) FROM matches WHERE toss_decision = 'field' AND toss_winner = winner"

  # chases where the powerplay cost three or more wickets
  crickmetrics sql "SELECT i.match_id, i.batting_team, i.pp_wickets, m.winner
    FROM innings i JOIN matches m USING (match_id)
    WHERE i.innings_number = 'B' AND i.pp_wickets >= 3"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return printQuery(os.Stdout, db, strings.Join(args, " "))
}

// printQuery runs query and renders its result as a table.
func printQuery(w io.Writer, db *storage.DB, query string) error {
	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	report.PrintQueryResult(w, cols, rows)
	return nil
}
