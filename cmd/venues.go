package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/report"
)

var (
	venuesFilter     filterFlags
	venuesMinInnings int
)

var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "Average innings at each venue, batting first and second",
	Long: `For each venue, and separately for innings batted first (A) and second (B),
shows the number of innings and the average total, wickets, middle-overs runs
and death-overs runs. Averages are rounded down.`,
	Args: cobra.NoArgs,
	RunE: runVenues,
}

func init() {
	venuesFilter.addYears(venuesCmd, 0)
	venuesFilter.addEvent(venuesCmd)
	venuesCmd.Flags().IntVar(&venuesMinInnings, "min-innings", 1, "hide venues with fewer innings")
	venuesCmd.Flags().StringVar(&venuesFilter.teams, "teams", "", "comma-separated batting teams to include")
}

func runVenues(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	avgs, err := db.VenueAverages(venuesFilter.filter(), venuesMinInnings)
	if err != nil {
		return fmt.Errorf("query venues: %w", err)
	}
	if len(avgs) == 0 {
		fmt.Fprintln(os.Stdout, "No venues match the given filters.")
		return nil
	}
	report.PrintVenueTable(os.Stdout, avgs)
	return nil
}
