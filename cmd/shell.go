package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/report"
	"github.com/pable/crickmetrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cGreeting.Println("crickmetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("crickmetrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList(db, rest)
		case "show":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: show <match-id-prefix>")
				continue
			}
			found, err := showMatch(db, rest)
			if err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			} else if !found {
				fmt.Fprintf(os.Stderr, "no match found with prefix %q\n", rest)
			}
		case "winloss":
			shellWinLoss(db, rest)
		case "trend", "phases", "matchups":
			if rest == "" {
				cError.Fprintf(os.Stderr, "usage: %s <team> [vs <opponent>]\n", cmd)
				continue
			}
			shellTeam(db, cmd, rest)
		case "venues":
			shellVenues(db, rest)
		case "sql":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: sql <query>")
				continue
			}
			if err := printQuery(os.Stdout, db, rest); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list [n]", "list the n most recent matches (default 20)"},
		{"show <match-id-prefix>", "show a match's phase breakdown"},
		{"winloss [since-year]", "win/loss table per team (default since 2016)"},
		{"trend <team> [vs <opponent>]", "year-by-year results for a team"},
		{"phases <team> [vs <opponent>]", "per-year phase averages for a team"},
		{"matchups <team> [vs <opponent>]", "wins and losses against venue par"},
		{"venues [min-innings]", "average innings per venue"},
		{"sql <query>", "run a raw SQL query"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-34s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

// intArg parses an optional numeric argument, falling back to def.
func intArg(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("expected a number, got %q", s)
	}
	return n, nil
}

func shellList(db *storage.DB, arg string) {
	n, err := intArg(arg, 20)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	matches, err := db.ListMatches(storage.Filter{Limit: n})
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(matches) == 0 {
		cMuted.Println("No matches stored yet.")
		return
	}
	cHeader.Fprintf(os.Stdout, "%-10s  %-10s  %-22s  %-8s  %-22s  %-8s\n",
		"MATCH", "DATE", "TEAM A", "SCORE", "TEAM B", "SCORE")
	for _, m := range matches {
		fmt.Fprintf(os.Stdout, "%-10s  %-10s  %-22s  %-8s  %-22s  %-8s\n",
			m.MatchID, m.Date, markWinner(m.TeamA, m.Winner), m.ScoreA, markWinner(m.TeamB, m.Winner), m.ScoreB)
	}
}

func shellWinLoss(db *storage.DB, arg string) {
	since, err := intArg(arg, 2016)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	recs, err := db.TeamRecords(storage.Filter{SinceYear: since})
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(recs) == 0 {
		cMuted.Println("No matches found.")
		return
	}
	report.PrintWinLossTable(os.Stdout, recs)
}

// shellTeam handles "trend", "phases" and "matchups"; arg is "<team>" or "<team> vs <opponent>".
func shellTeam(db *storage.DB, which, arg string) {
	team, opponent, _ := strings.Cut(arg, " vs ")
	team, opponent = strings.TrimSpace(team), strings.TrimSpace(opponent)
	f := storage.Filter{Opponent: opponent}

	cHeader.Fprintf(os.Stdout, "\n--- %s: %s ---\n", which, arg)
	if which == "matchups" {
		f.Team = team
		ms, err := db.WinComposition(f)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		if len(ms) == 0 {
			cMuted.Printf("No matches found for %s.\n", team)
			return
		}
		report.PrintMatchupTable(os.Stdout, ms)
		return
	}
	if which == "trend" {
		recs, err := db.TeamTrend(team, f)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		if len(recs) == 0 {
			cMuted.Printf("No matches found for %s.\n", team)
			return
		}
		report.PrintTrendTable(os.Stdout, recs)
		return
	}
	splits, err := db.PhaseSplits(team, f)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(splits) == 0 {
		cMuted.Printf("No innings found for %s.\n", team)
		return
	}
	report.PrintPhaseTable(os.Stdout, splits)
}

func shellVenues(db *storage.DB, arg string) {
	minInnings, err := intArg(arg, 1)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	avgs, err := db.VenueAverages(storage.Filter{}, minInnings)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(avgs) == 0 {
		cMuted.Println("No venues match.")
		return
	}
	report.PrintVenueTable(os.Stdout, avgs)
}
