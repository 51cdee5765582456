package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/report"
)

var winlossFilter filterFlags

var winlossCmd = &cobra.Command{
	Use:   "winloss",
	Short: "Win/loss record per team, best win rate first",
	Long: `Counts, for each team, the matches played and won, split by whether the team
batted first or second. Teams are ordered by win percentage.`,
	Args: cobra.NoArgs,
	RunE: runWinLoss,
}

func init() {
	winlossFilter.addYears(winlossCmd, 2016)
	winlossFilter.addEvent(winlossCmd)
	winlossCmd.Flags().StringVar(&winlossFilter.teams, "teams", "", "comma-separated teams to include (default: all)")
	winlossCmd.Flags().IntVarP(&winlossFilter.limit, "limit", "n", 0, "show at most n teams (0 = all)")
}

func runWinLoss(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	recs, err := db.TeamRecords(winlossFilter.filter())
	if err != nil {
		return fmt.Errorf("query team records: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stdout, "No matches found for the given filters.")
		return nil
	}
	if n := winlossFilter.limit; n > 0 && len(recs) > n {
		recs = recs[:n]
	}
	report.PrintWinLossTable(os.Stdout, recs)
	return nil
}
