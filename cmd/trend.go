package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/report"
)

var trendFilter filterFlags

var trendCmd = &cobra.Command{
	Use:   "trend <team>",
	Short: "Year-by-year results and scores for a team",
	Long: `Shows, per year, a team's overall win rate, its win rate batting first and
second, and its average total and wickets lost in each case. With --vs only
matches against that opponent are counted.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrend,
}

func init() {
	trendFilter.addYears(trendCmd, 0)
	trendFilter.addEvent(trendCmd)
	trendCmd.Flags().StringVar(&trendFilter.vs, "vs", "", "only matches against this opponent")
}

func runTrend(cmd *cobra.Command, args []string) error {
	team := args[0]
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	recs, err := db.TeamTrend(team, trendFilter.filter())
	if err != nil {
		return fmt.Errorf("query trend: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintf(os.Stdout, "No matches found for %s.\n", team)
		return nil
	}

	title := team
	if trendFilter.vs != "" {
		title += " vs " + trendFilter.vs
	}
	fmt.Fprintf(os.Stdout, "\n%s\n\n", title)
	report.PrintTrendTable(os.Stdout, recs)
	return nil
}
