package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listFilter filterFlags

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored matches, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listFilter.addYears(listCmd, 0)
	listFilter.addEvent(listCmd)
	listCmd.Flags().StringVar(&listFilter.team, "team", "", "only matches involving this team")
	listCmd.Flags().StringVar(&listFilter.venue, "venue", "", "only matches at this venue")
	listCmd.Flags().IntVarP(&listFilter.limit, "limit", "n", 0, "show at most n matches (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := db.ListMatches(listFilter.filter())
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'crickmetrics ingest <data-dir>' to add some.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-10s  %-22s  %-8s  %-22s  %-8s  %s\n",
		"MATCH", "DATE", "TEAM A", "SCORE", "TEAM B", "SCORE", "VENUE")
	fmt.Fprintf(os.Stdout, "%-10s  %-10s  %-22s  %-8s  %-22s  %-8s  %s\n",
		"──────────", "──────────", "──────────────────────", "────────", "──────────────────────", "────────", "─────")
	for _, m := range matches {
		fmt.Fprintf(os.Stdout, "%-10s  %-10s  %-22s  %-8s  %-22s  %-8s  %s\n",
			m.MatchID, m.Date, markWinner(m.TeamA, m.Winner), m.ScoreA, markWinner(m.TeamB, m.Winner), m.ScoreB, m.Venue)
	}
	return nil
}

func markWinner(team, winner string) string {
	if team != "" && team == winner {
		return team + " *"
	}
	return team
}
