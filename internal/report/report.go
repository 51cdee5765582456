package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/crickmetrics/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

// PrintMatchSummary prints a one-line summary header for the match.
func PrintMatchSummary(w io.Writer, s model.MatchSummary) {
	where := s.Venue
	if s.City != "" {
		where += ", " + s.City
	}
	fmt.Fprintf(w, "\nMatch: %s  |  Date: %s  |  %s %s v %s %s  |  Winner: %s\n",
		s.MatchID, s.Date, s.TeamA, s.ScoreA, s.TeamB, s.ScoreB, s.Winner)
	if s.Event != "" {
		fmt.Fprintf(w, "Venue: %s  |  Event: %s\n\n", where, s.Event)
	} else {
		fmt.Fprintf(w, "Venue: %s\n\n", where)
	}
}

func phaseCell(p model.PhaseResult) string {
	return fmt.Sprintf("%d/%d", p.Runs, p.Wickets)
}

// PrintInningsTable prints the phase breakdown of each innings row. The
// winning side is marked with "*".
func PrintInningsTable(w io.Writer, rows []model.InningsRow) {
	table := newTable(w)
	table.Header(" ", "INN", "BATTING", "BOWLING", "POWERPLAY", "MIDDLE", "DEATH", "TOTAL")

	for i := range rows {
		r := &rows[i]
		marker := " "
		if r.Won() {
			marker = "*"
		}
		table.Append(
			marker,
			r.Innings.Tag(),
			r.BattingTeam,
			r.BowlingTeam,
			phaseCell(r.Powerplay),
			phaseCell(r.Middle),
			phaseCell(r.Death),
			fmt.Sprintf("%d/%d", r.TotalRuns(), r.TotalWickets()),
		)
	}
	table.Render()
}

// PrintWinLossTable prints one line per team: matches, wins, and win rates
// and average totals batting first and second.
func PrintWinLossTable(w io.Writer, recs []model.TeamRecord) {
	table := newTable(w)
	table.Header("TEAM", "MATCHES", "W", "L", "WIN%", "BAT1_W%", "BAT2_W%", "BAT1_AVG", "BAT2_AVG", "SAMPLE")

	for i := range recs {
		r := &recs[i]
		table.Append(
			r.Team,
			strconv.Itoa(r.Matches),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses()),
			fmt.Sprintf("%.1f%%", r.WinPct()),
			pctOrDash(r.BatFirstWinPct(), r.BatFirstMatches),
			pctOrDash(r.BowlFirstWinPct(), r.BowlFirstMatches),
			avgOrDash(r.AvgBatFirstScore(), r.BatFirstMatches),
			avgOrDash(r.AvgBowlFirstScore(), r.BowlFirstMatches),
			sampleFlag(r.Matches),
		)
	}
	table.Render()
}

// PrintTrendTable prints a team's per-year results and average scores
// batting first and second.
func PrintTrendTable(w io.Writer, recs []model.TeamRecord) {
	table := newTable(w)
	table.Header("YEAR", "MATCHES", "WIN%", "BAT1_W%", "BAT2_W%", "BAT1_AVG", "BAT2_AVG", "BAT1_WKT", "BAT2_WKT")

	for i := range recs {
		r := &recs[i]
		table.Append(
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Matches),
			fmt.Sprintf("%.0f%%", r.WinPct()),
			pctOrDash(r.BatFirstWinPct(), r.BatFirstMatches),
			pctOrDash(r.BowlFirstWinPct(), r.BowlFirstMatches),
			avgOrDash(r.AvgBatFirstScore(), r.BatFirstMatches),
			avgOrDash(r.AvgBowlFirstScore(), r.BowlFirstMatches),
			avgOrDash(r.AvgBatFirstWickets(), r.BatFirstMatches),
			avgOrDash(r.AvgBowlFirstWickets(), r.BowlFirstMatches),
		)
	}
	table.Render()
}

// PrintPhaseTable prints, per year and innings, the average runs, run rate
// per over and wickets of each phase.
func PrintPhaseTable(w io.Writer, splits []model.PhaseSplit) {
	table := newTable(w)
	table.Header("YEAR", "INN", "N",
		"PP_RUNS", "PP_RPO", "PP_WKT",
		"MID_RUNS", "MID_RPO", "MID_WKT",
		"DEATH_RUNS", "DEATH_RPO", "DEATH_WKT")

	for i := range splits {
		s := &splits[i]
		row := []any{strconv.Itoa(s.Year), s.Innings.Tag(), strconv.Itoa(s.Count)}
		for _, p := range model.Phases {
			row = append(row,
				fmt.Sprintf("%.1f", s.AvgRuns(p)),
				fmt.Sprintf("%.2f", s.RunRate(p)),
				fmt.Sprintf("%.1f", s.AvgWickets(p)),
			)
		}
		table.Append(row...)
	}
	table.Render()
}

// PrintVenueTable prints per-venue innings averages.
func PrintVenueTable(w io.Writer, avgs []model.VenueAverage) {
	table := newTable(w)
	table.Header("VENUE", "CITY", "INN", "N", "AVG_SCORE", "AVG_WKT", "AVG_MID", "AVG_DEATH", "SAMPLE")

	for i := range avgs {
		v := &avgs[i]
		city := v.City
		if city == "" {
			city = "—"
		}
		table.Append(
			v.Venue,
			city,
			v.Innings.Tag(),
			strconv.Itoa(v.Count),
			strconv.Itoa(v.AvgScore()),
			strconv.Itoa(v.AvgWickets()),
			strconv.Itoa(v.AvgMiddleRuns()),
			strconv.Itoa(v.AvgDeathRuns()),
			sampleFlag(v.Count),
		)
	}
	table.Render()
}

// PrintMatchupTable prints win composition against each opponent: how many
// of the wins (or losses) came with a good batting and bowling display, with
// the bat only, or with the ball only, measured against venue par.
func PrintMatchupTable(w io.Writer, ms []model.Matchup) {
	table := newTable(w)
	table.Header("TEAM", "OPPONENT", "RESULT", "MATCHES", "BAT+BOWL", "BAT_ONLY", "BOWL_ONLY")

	for i := range ms {
		m := &ms[i]
		result := "lost"
		if m.Won {
			result = "won"
		}
		table.Append(
			m.Team,
			m.Opponent,
			result,
			strconv.Itoa(m.Matches),
			strconv.Itoa(m.Both),
			strconv.Itoa(m.Batting),
			strconv.Itoa(m.Bowling),
		)
	}
	table.Render()
}

// PrintIngestRuns prints recent ingest runs.
func PrintIngestRuns(w io.Writer, runs []model.IngestRun) {
	table := newTable(w)
	table.Header("RUN", "STARTED", "SEEN", "STORED", "SKIPPED", "FAILED")
	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		table.Append(
			id,
			r.StartedAt,
			strconv.Itoa(r.Seen),
			strconv.Itoa(r.Stored),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
		)
	}
	table.Render()
}

// PrintQueryResult prints the columns and rows of a raw query, followed by
// the row count.
func PrintQueryResult(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}

func pctOrDash(v float64, n int) string {
	if n == 0 {
		return "—"
	}
	return fmt.Sprintf("%.0f%%", v)
}

func avgOrDash(v float64, n int) string {
	if n == 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f", v)
}

// sampleFlag grades how far a figure built from n matches can be trusted.
func sampleFlag(n int) string {
	switch {
	case n >= 20:
		return "OK"
	case n >= 8:
		return "LOW"
	default:
		return "VERY_LOW"
	}
}
