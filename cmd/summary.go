package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/report"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all matches stored in the database:
match and innings counts, date range, events and recent ingest runs.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.GetDBOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Matches == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'crickmetrics ingest <data-dir>' to add some.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Matches stored : %s\n", humanize.Comma(int64(ov.Matches)))
	fmt.Fprintf(os.Stdout, "  Innings        : %s\n", humanize.Comma(int64(ov.Innings)))
	fmt.Fprintf(os.Stdout, "  Date range     : %s → %s\n", ov.EarliestDate, ov.LatestDate)
	fmt.Fprintf(os.Stdout, "  Teams          : %d\n", ov.Teams)
	fmt.Fprintf(os.Stdout, "  Venues         : %d\n", ov.Venues)
	if st, err := os.Stat(dbPath); err == nil {
		fmt.Fprintf(os.Stdout, "  Database size  : %s\n", humanize.Bytes(uint64(st.Size())))
	}

	// Event breakdown, only when events are recorded.
	events, err := db.Events()
	if err != nil {
		return fmt.Errorf("get events: %w", err)
	}
	if len(events) > 0 {
		names := make([]string, 0, len(events))
		for name := range events {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if events[names[i]] != events[names[j]] {
				return events[names[i]] > events[names[j]]
			}
			return names[i] < names[j]
		})
		if len(names) > 15 {
			names = names[:15]
		}

		fmt.Fprintf(os.Stdout, "\n--- Events ---\n\n")
		et := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
		}))
		et.Header("EVENT", "MATCHES")
		for _, name := range names {
			et.Append(name, humanize.Comma(int64(events[name])))
		}
		et.Render()
	}

	runs, err := db.ListIngestRuns(5)
	if err != nil {
		return fmt.Errorf("list ingest runs: %w", err)
	}
	if len(runs) > 0 {
		fmt.Fprintf(os.Stdout, "\n--- Recent Ingest Runs ---\n\n")
		report.PrintIngestRuns(os.Stdout, runs)
	}
	return nil
}
