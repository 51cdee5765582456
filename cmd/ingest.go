package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/pipeline"
)

var (
	ingestForce   bool
	ingestVerbose bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [data-dir | match.csv]",
	Short: "Parse cricsheet CSV files and store per-innings phase summaries",
	Long: `Reads every "<id>.csv" ball-by-ball file in the data directory together with
its "<id>_info.csv" file, summarises both innings into powerplay (overs 1-6),
middle (7-16) and death (17-20) runs and wickets, and stores the result.

Matches already in the database are skipped unless --force is given. Matches
without a winner (no result, tie) are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "re-ingest matches that are already stored")
	ingestCmd.Flags().BoolVarP(&ingestVerbose, "verbose", "v", false, "list every skipped and failed match")
}

func runIngest(cmd *cobra.Command, args []string) error {
	dataDir := cfg.DataDir
	if len(args) == 1 {
		dataDir = args[0]
	}
	if dataDir == "" {
		return fmt.Errorf("no data directory: pass one as an argument or set data_dir / --data-dir")
	}

	venues, err := loadVenues()
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stdout, "Ingesting %s with %d workers...\n", dataDir, cfg.Workers)
	batch, runErr := pipeline.Run(ctx, dataDir, db, pipeline.Options{
		Workers: cfg.Workers,
		Force:   ingestForce,
		Venues:  venues,
		Log:     log,
	})
	if batch == nil {
		return runErr
	}
	printBatch(batch, ingestVerbose)
	return runErr
}

func printBatch(b *pipeline.Batch, verbose bool) {
	ok := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow)
	bad := color.New(color.FgRed, color.Bold)

	fmt.Fprintf(os.Stdout, "\nRun %s\n", b.Run.ID)
	fmt.Fprintf(os.Stdout, "  Matches seen   : %s\n", humanize.Comma(int64(b.Run.Seen)))
	ok.Fprintf(os.Stdout, "  Stored         : %s\n", humanize.Comma(int64(b.Run.Stored)))
	warn.Fprintf(os.Stdout, "  Skipped        : %s\n", humanize.Comma(int64(b.Run.Skipped)))
	if b.Run.Failed > 0 {
		bad.Fprintf(os.Stdout, "  Failed         : %s\n", humanize.Comma(int64(b.Run.Failed)))
	} else {
		fmt.Fprintf(os.Stdout, "  Failed         : 0\n")
	}
	if b.Dropped > 0 || b.Malformed > 0 {
		warn.Fprintf(os.Stdout, "  Rows ignored   : %s outside innings 1-2, %s malformed\n",
			humanize.Comma(int64(b.Dropped)), humanize.Comma(int64(b.Malformed)))
	}

	if !verbose {
		if len(b.Failures) > 0 {
			fmt.Fprintln(os.Stdout, "\nRe-run with --verbose to list failed matches.")
		}
		return
	}
	for _, s := range b.Skips {
		warn.Fprintf(os.Stdout, "  skip  %-10s %s\n", s.MatchID, s.Reason)
	}
	for _, f := range b.Failures {
		bad.Fprintf(os.Stdout, "  fail  %-10s %v\n", f.MatchID, f.Err)
	}
}
