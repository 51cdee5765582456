package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/report"
)

var phasesFilter filterFlags

// phasesCmd shows how a team scores and loses wickets across the three phases.
var phasesCmd = &cobra.Command{
	Use:   "phases <team>",
	Short: "Per-year phase averages for a team, batting first and second",
	Long: `Averages runs scored and wickets lost in the powerplay (overs 1-6), middle
overs (7-16) and death overs (17-20) per innings, per year, separately for
innings batted first (A) and second (B).`,
	Args: cobra.ExactArgs(1),
	RunE: runPhases,
}

func init() {
	phasesFilter.addYears(phasesCmd, 0)
	phasesFilter.addEvent(phasesCmd)
	phasesCmd.Flags().StringVar(&phasesFilter.vs, "vs", "", "only innings against this opponent")
}

func runPhases(cmd *cobra.Command, args []string) error {
	team := args[0]
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	splits, err := db.PhaseSplits(team, phasesFilter.filter())
	if err != nil {
		return fmt.Errorf("query phases: %w", err)
	}
	if len(splits) == 0 {
		fmt.Fprintf(os.Stdout, "No innings found for %s.\n", team)
		return nil
	}
	fmt.Fprintf(os.Stdout, "\n%s: average runs / wickets per phase\n\n", team)
	report.PrintPhaseTable(os.Stdout, splits)
	return nil
}
