package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/report"
)

var matchupsFilter filterFlags

var matchupsCmd = &cobra.Command{
	Use:   "matchups [team]",
	Short: "How each team's wins and losses were shaped, against venue par",
	Long: `Compares every match with the average first-innings score at its venue (par).

The side batting first batted well when it reached par and bowled well when
the chase fell short. The chasing side bowled well when it kept the first
innings under par and batted well when it caught the total. Results are
counted per team, opponent and win or loss as bat and ball, bat only or
ball only.

Example:
  crickmetrics matchups India --vs Pakistan --since 2016`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatchups,
}

func init() {
	matchupsFilter.addYears(matchupsCmd, 2016)
	matchupsFilter.addEvent(matchupsCmd)
	matchupsCmd.Flags().StringVar(&matchupsFilter.vs, "vs", "", "only matches against this opponent")
	matchupsCmd.Flags().StringVar(&matchupsFilter.teams, "teams", "", "comma-separated teams to report (default: all)")
	matchupsCmd.Flags().StringVar(&matchupsFilter.venue, "venue", "", "only matches at this venue")
}

func runMatchups(cmd *cobra.Command, args []string) error {
	f := matchupsFilter.filter()
	if len(args) == 1 {
		f.Team = args[0]
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ms, err := db.WinComposition(f)
	if err != nil {
		return fmt.Errorf("query matchups: %w", err)
	}
	if len(ms) == 0 {
		fmt.Fprintln(os.Stdout, "No matches found for the given filters.")
		return nil
	}
	report.PrintMatchupTable(os.Stdout, ms)
	return nil
}
