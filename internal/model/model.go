package model

import "strconv"

// Innings is the innings marker carried by every ball row. Only the first two
// innings of a match are recognised; super overs (3, 4, ...) are not.
type Innings int

const (
	InningsUnknown Innings = 0
	InningsFirst   Innings = 1
	InningsSecond  Innings = 2
)

// Tag returns the identifier suffix for the innings: "A" for the first
// innings batting team, "B" for the second.
func (i Innings) Tag() string {
	switch i {
	case InningsFirst:
		return "A"
	case InningsSecond:
		return "B"
	default:
		return "?"
	}
}

func (i Innings) String() string { return i.Tag() }

// Valid reports whether the marker is one of the two recognised innings.
func (i Innings) Valid() bool {
	return i == InningsFirst || i == InningsSecond
}

// ParseInningsTag maps "A"/"B" back to the innings marker.
func ParseInningsTag(s string) Innings {
	switch s {
	case "A", "a":
		return InningsFirst
	case "B", "b":
		return InningsSecond
	default:
		return InningsUnknown
	}
}

// Phase is one of the three scoring phases of a 20-over innings.
type Phase int

const (
	PhasePowerplay Phase = iota
	PhaseMiddle
	PhaseDeath
)

// Phases lists the phases in innings order.
var Phases = []Phase{PhasePowerplay, PhaseMiddle, PhaseDeath}

// Phase boundaries in ball-index units. A ball index equal to a boundary
// belongs to the phase that starts there.
const (
	MiddleStart = 6.1
	DeathStart  = 16.1
)

func (p Phase) String() string {
	switch p {
	case PhasePowerplay:
		return "Powerplay"
	case PhaseMiddle:
		return "Middle"
	case PhaseDeath:
		return "Death"
	default:
		return "Phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// Overs is the number of overs the phase spans in a 20-over innings.
func (p Phase) Overs() int {
	switch p {
	case PhasePowerplay:
		return 6
	case PhaseMiddle:
		return 10
	case PhaseDeath:
		return 4
	default:
		return 0
	}
}

// Contains reports whether a ball index falls in the phase's half-open interval.
func (p Phase) Contains(index float64) bool {
	switch p {
	case PhasePowerplay:
		return index >= 0 && index < MiddleStart
	case PhaseMiddle:
		return index >= MiddleStart && index < DeathStart
	case PhaseDeath:
		return index >= DeathStart
	default:
		return false
	}
}

// ---- Raw rows emitted by the parser ----

// Ball is one delivery from a ball-by-ball file.
type Ball struct {
	MatchID     string
	StartDate   string // "YYYY-MM-DD"
	Venue       string
	Innings     Innings
	Index       float64 // over.ball, e.g. 6.1 = first ball of the 7th over
	BattingTeam string
	BowlingTeam string
	RunsOffBat  int
	Extras      int
	WicketType  string // empty when no wicket fell
	Malformed   bool   // index or a numeric field failed to parse
}

// MatchInfo is the metadata read from a match's info file.
type MatchInfo struct {
	MatchID      string
	Date         string
	Season       string
	Event        string
	Venue        string
	City         string
	TossWinner   string
	TossDecision string
	Winner       string
	Outcome      string // set only when there is no winner ("no result", "tie")
}

// Complete reports whether the match produced a winner.
func (m MatchInfo) Complete() bool {
	return m.Outcome == ""
}

// ---- Aggregated records ----

// PhaseResult is the runs (including extras) and wickets of one phase.
type PhaseResult struct {
	Runs    int
	Wickets int
}

// InningsRecord is the per-innings summary produced by the assembler.
type InningsRecord struct {
	ID          string // match id + tag
	MatchID     string
	Innings     Innings
	Year        int
	Venue       string
	BattingTeam string
	BowlingTeam string

	Powerplay PhaseResult
	Middle    PhaseResult
	Death     PhaseResult
}

// Phase returns the result for p.
func (r *InningsRecord) Phase(p Phase) PhaseResult {
	switch p {
	case PhasePowerplay:
		return r.Powerplay
	case PhaseMiddle:
		return r.Middle
	default:
		return r.Death
	}
}

// TotalRuns is the sum of runs across the three phases.
func (r *InningsRecord) TotalRuns() int {
	return r.Powerplay.Runs + r.Middle.Runs + r.Death.Runs
}

// TotalWickets is the sum of wickets across the three phases.
func (r *InningsRecord) TotalWickets() int {
	return r.Powerplay.Wickets + r.Middle.Wickets + r.Death.Wickets
}

// MatchInnings is the assembler's output for one match.
type MatchInnings struct {
	MatchID   string
	Year      int
	Venue     string
	First     InningsRecord
	Second    InningsRecord
	Dropped   int // rows whose innings marker was not 1 or 2
	Malformed int // rows with an unparseable index or numeric field
}

// MatchRecord merges the innings summaries with the match metadata.
type MatchRecord struct {
	Info       MatchInfo
	Year       int
	Venue      string // normalised venue name
	City       string
	Innings    [2]InningsRecord
	SourceFile string
}

// Rows flattens the record into its two combined-table rows.
func (m *MatchRecord) Rows() []InningsRow {
	out := make([]InningsRow, 0, 2)
	for _, inn := range m.Innings {
		inn.Venue = m.Venue
		out = append(out, InningsRow{
			InningsRecord: inn,
			City:          m.City,
			Event:         m.Info.Event,
			TossWinner:    m.Info.TossWinner,
			TossDecision:  m.Info.TossDecision,
			Winner:        m.Info.Winner,
		})
	}
	return out
}

// InningsRow is one row of the combined innings table.
type InningsRow struct {
	InningsRecord
	City         string
	Event        string
	TossWinner   string
	TossDecision string
	Winner       string
}

// Won reports whether the batting team of this innings won the match.
func (r *InningsRow) Won() bool {
	return r.Winner != "" && r.Winner == r.BattingTeam
}

// MatchSummary is a lightweight record for list/show commands.
type MatchSummary struct {
	MatchID    string
	Date       string
	Year       int
	Event      string
	Venue      string
	City       string
	TeamA      string // batting first
	TeamB      string
	ScoreA     string // "runs/wickets"
	ScoreB     string
	Winner     string
	SourceFile string
}

// TeamRecord holds win/loss counts for one team, optionally for one year.
type TeamRecord struct {
	Team             string
	Year             int // 0 when aggregated over all years
	Matches          int
	Wins             int
	BatFirstMatches  int
	BatFirstWins     int
	BowlFirstMatches int
	BowlFirstWins    int

	// Score totals for the trend view.
	BatFirstRuns     int
	BatFirstWickets  int
	BowlFirstRuns    int
	BowlFirstWickets int
}

func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

func avg(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func (t *TeamRecord) Losses() int              { return t.Matches - t.Wins }
func (t *TeamRecord) WinPct() float64          { return pct(t.Wins, t.Matches) }
func (t *TeamRecord) BatFirstWinPct() float64  { return pct(t.BatFirstWins, t.BatFirstMatches) }
func (t *TeamRecord) BowlFirstWinPct() float64 { return pct(t.BowlFirstWins, t.BowlFirstMatches) }

// AvgBatFirstScore is the average innings total when batting first.
func (t *TeamRecord) AvgBatFirstScore() float64 { return avg(t.BatFirstRuns, t.BatFirstMatches) }

// AvgBowlFirstScore is the average innings total when batting second.
func (t *TeamRecord) AvgBowlFirstScore() float64 { return avg(t.BowlFirstRuns, t.BowlFirstMatches) }

func (t *TeamRecord) AvgBatFirstWickets() float64  { return avg(t.BatFirstWickets, t.BatFirstMatches) }
func (t *TeamRecord) AvgBowlFirstWickets() float64 { return avg(t.BowlFirstWickets, t.BowlFirstMatches) }

// PhaseSplit sums phase figures for one team, year and innings.
type PhaseSplit struct {
	Team    string
	Year    int
	Innings Innings
	Count   int // innings played
	Runs    [3]int
	Wickets [3]int
}

// AvgRuns is the mean runs per innings in phase p.
func (s *PhaseSplit) AvgRuns(p Phase) float64 { return avg(s.Runs[p], s.Count) }

// AvgWickets is the mean wickets per innings in phase p.
func (s *PhaseSplit) AvgWickets(p Phase) float64 { return avg(s.Wickets[p], s.Count) }

// RunRate is the mean runs per over in phase p.
func (s *PhaseSplit) RunRate(p Phase) float64 { return avg(s.Runs[p], s.Count*p.Overs()) }

// VenueAverage holds per-venue innings averages. Averages are floor divisions
// of the summed figures by the innings count.
type VenueAverage struct {
	Venue      string
	City       string
	Innings    Innings
	Count      int
	TotalRuns  int
	Wickets    int
	MiddleRuns int
	DeathRuns  int
}

func floorDiv(n, d int) int {
	if d == 0 {
		return 0
	}
	return n / d
}

func (v *VenueAverage) AvgScore() int      { return floorDiv(v.TotalRuns, v.Count) }
func (v *VenueAverage) AvgWickets() int    { return floorDiv(v.Wickets, v.Count) }
func (v *VenueAverage) AvgMiddleRuns() int { return floorDiv(v.MiddleRuns, v.Count) }
func (v *VenueAverage) AvgDeathRuns() int  { return floorDiv(v.DeathRuns, v.Count) }

// Performance says which disciplines a side did well in over one match,
// judged against the venue's average first-innings score (par).
type Performance struct {
	Both    bool // batted and bowled well
	Batting bool
	Bowling bool
}

// ClassifyInnings compares a first-innings total and the chase against par.
// The side batting first batted well when it reached par and bowled well when
// the chase fell short; the chasing side bowled well when the first innings
// stayed under par and batted well when it caught the total. Both flags
// together are reported as Both only. Without a par (parOK false) the
// par-based halves are never set.
func ClassifyInnings(first, second, par int, parOK bool) (batFirst, chase Performance) {
	overPar := parOK && first >= par
	underPar := parOK && first < par
	defended := second < first
	caught := second >= first

	switch {
	case overPar && defended:
		batFirst.Both = true
	case overPar:
		batFirst.Batting = true
	case defended:
		batFirst.Bowling = true
	}
	switch {
	case caught && underPar:
		chase.Both = true
	case caught:
		chase.Batting = true
	case underPar:
		chase.Bowling = true
	}
	return batFirst, chase
}

// Matchup counts one team's wins or losses against one opponent by the shape
// of its performance.
type Matchup struct {
	Team     string
	Opponent string
	Won      bool
	Matches  int
	Both     int
	Batting  int
	Bowling  int
}

// Add folds one match into the counts.
func (m *Matchup) Add(p Performance) {
	m.Matches++
	switch {
	case p.Both:
		m.Both++
	case p.Batting:
		m.Batting++
	case p.Bowling:
		m.Bowling++
	}
}

// IngestRun records one invocation of the ingest command.
type IngestRun struct {
	ID        string
	StartedAt string
	DataDir   string
	Seen      int
	Stored    int
	Skipped   int
	Failed    int
}
