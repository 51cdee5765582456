package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/export"
)

var (
	exportFilter      filterFlags
	exportOut         string
	exportFormat      string
	exportCompression string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the combined innings table as CSV, JSON lines or Parquet",
	Long: `Writes one row per stored innings, two per match, with the columns

  id, year, venue, team_A, team_B,
  Runs_in_Powerplay, Wickets_lost_in_Powerplay,
  Runs_in_middle_overs, Wickets_lost_in_middle_overs,
  Runs_in_Death_overs, Wickets_lost_in_death_overs,
  Total_Score_A, Total_Wicket_A,
  city, event, toss_winner, toss_decision, winner, match_id, innings_number

team_A is the batting side of that innings. The format follows --format, or the
extension of --out, and defaults to CSV. An --out path ending in ".zst" or ".gz"
is compressed with zstd or gzip.

Example:
  crickmetrics export --out t20.csv
  crickmetrics export --format jsonl --out t20.jsonl.zst
  crickmetrics export --since 2021 --event "ICC Men's T20 World Cup" --out wc.parquet`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportFilter.addYears(exportCmd, 0)
	exportFilter.addEvent(exportCmd)
	exportCmd.Flags().StringVar(&exportFilter.team, "team", "", "only innings batted by this team")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "csv, jsonl or parquet")
	exportCmd.Flags().StringVar(&exportCompression, "compression", "snappy", "parquet compression: snappy, gzip or none")
}

func runExport(_ *cobra.Command, _ []string) error {
	format := export.FormatCSV
	switch {
	case exportFormat != "":
		f, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		format = f
	case exportOut != "":
		format = export.FormatFromPath(exportOut)
	}
	if format == export.FormatParquet && exportOut == "" {
		return fmt.Errorf("parquet output needs --out")
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.InningsRows(exportFilter.filter())
	if err != nil {
		return fmt.Errorf("query innings: %w", err)
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	cw, err := export.CompressWriter(w, exportOut)
	if err != nil {
		return err
	}
	if err := export.Write(cw, format, rows, export.Options{Compression: exportCompression}); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d innings to %s (%s)\n", len(rows), exportOut, format)
	}
	return nil
}
