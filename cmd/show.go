package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/report"
	"github.com/pable/crickmetrics/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <match-id-prefix>",
	Short: "Show the phase breakdown of a stored match",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	found, err := showMatch(db, args[0])
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(os.Stderr, "No match found with id prefix %q\n", args[0])
	}
	return nil
}

// showMatch prints a match and its innings table. It reports whether the
// prefix matched anything.
func showMatch(db *storage.DB, prefix string) (bool, error) {
	match, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return false, fmt.Errorf("query match: %w", err)
	}
	if match == nil {
		return false, nil
	}
	rows, err := db.GetInnings(match.MatchID)
	if err != nil {
		return true, fmt.Errorf("get innings: %w", err)
	}
	report.PrintMatchSummary(os.Stdout, *match)
	report.PrintInningsTable(os.Stdout, rows)
	return true, nil
}
