package storage

import (
	"testing"

	"github.com/pable/crickmetrics/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func innings(matchID string, inn model.Innings, bat, bowl string, pp, mid, death model.PhaseResult) model.InningsRecord {
	return model.InningsRecord{
		ID:          matchID + inn.Tag(),
		MatchID:     matchID,
		Innings:     inn,
		BattingTeam: bat,
		BowlingTeam: bowl,
		Powerplay:   pp,
		Middle:      mid,
		Death:       death,
	}
}

// testMatch builds a match where teamA bats first scoring runsA and teamB replies with runsB.
func testMatch(id, date string, year int, venue, event, teamA, teamB string, runsA, runsB int, winner string) model.MatchRecord {
	a := innings(id, model.InningsFirst, teamA, teamB,
		model.PhaseResult{Runs: 50, Wickets: 1},
		model.PhaseResult{Runs: runsA - 80, Wickets: 3},
		model.PhaseResult{Runs: 30, Wickets: 2})
	b := innings(id, model.InningsSecond, teamB, teamA,
		model.PhaseResult{Runs: 40, Wickets: 2},
		model.PhaseResult{Runs: runsB - 60, Wickets: 4},
		model.PhaseResult{Runs: 20, Wickets: 3})
	a.Year, b.Year = year, year
	return model.MatchRecord{
		Info: model.MatchInfo{
			MatchID: id,
			Date:    date,
			Event:   event,
			Venue:   venue,
			Winner:  winner,
		},
		Year:       year,
		Venue:      venue,
		City:       "City of " + venue,
		Innings:    [2]model.InningsRecord{a, b},
		SourceFile: id + ".csv",
	}
}

func seed(t *testing.T, db *DB, recs ...model.MatchRecord) {
	t.Helper()
	for _, r := range recs {
		if err := db.InsertMatch(r, "run-1"); err != nil {
			t.Fatalf("InsertMatch %s: %v", r.Info.MatchID, err)
		}
	}
}

func TestMatchInsertAndExists(t *testing.T) {
	db := openMemDB(t)
	seed(t, db, testMatch("1001", "2019-03-01", 2019, "Eden Park", "", "India", "New Zealand", 180, 150, "India"))

	exists, err := db.MatchExists("1001")
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if !exists {
		t.Error("expected match to exist after insert")
	}

	exists2, _ := db.MatchExists("nonexistent")
	if exists2 {
		t.Error("expected non-existent match to not exist")
	}

	ids, err := db.ListMatchIDs()
	if err != nil {
		t.Fatalf("ListMatchIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "1001" {
		t.Errorf("ListMatchIDs = %v, want [1001]", ids)
	}
}

func TestInsertMatchIsIdempotent(t *testing.T) {
	db := openMemDB(t)
	rec := testMatch("1001", "2019-03-01", 2019, "Eden Park", "", "India", "New Zealand", 180, 150, "India")
	seed(t, db, rec, rec)

	rows, err := db.GetInnings("1001")
	if err != nil {
		t.Fatalf("GetInnings: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 innings after re-insert, got %d", len(rows))
	}
}

func TestGetInningsRoundTrip(t *testing.T) {
	db := openMemDB(t)
	seed(t, db, testMatch("1001", "2019-03-01", 2019, "Eden Park", "Trans-Tasman", "India", "New Zealand", 180, 150, "India"))

	rows, err := db.GetInnings("1001")
	if err != nil {
		t.Fatalf("GetInnings: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	a, b := rows[0], rows[1]
	if a.ID != "1001A" || a.Innings != model.InningsFirst || a.BattingTeam != "India" {
		t.Errorf("first row = %+v", a.InningsRecord)
	}
	if b.ID != "1001B" || b.Innings != model.InningsSecond || b.BattingTeam != "New Zealand" {
		t.Errorf("second row = %+v", b.InningsRecord)
	}
	if a.TotalRuns() != 180 || b.TotalRuns() != 150 {
		t.Errorf("totals = %d, %d; want 180, 150", a.TotalRuns(), b.TotalRuns())
	}
	if a.Middle.Wickets != 3 || b.Death.Runs != 20 {
		t.Errorf("phase fields lost: %+v / %+v", a.Middle, b.Death)
	}
	if !a.Won() || b.Won() {
		t.Error("expected India (batting first) to be the winner")
	}
	if a.City != "City of Eden Park" || a.Event != "Trans-Tasman" {
		t.Errorf("match metadata not joined: city=%q event=%q", a.City, a.Event)
	}
}

func TestListMatches(t *testing.T) {
	db := openMemDB(t)
	seed(t, db,
		testMatch("1001", "2019-03-01", 2019, "Eden Park", "", "India", "New Zealand", 180, 150, "India"),
		testMatch("1002", "2021-06-10", 2021, "Lord's", "", "England", "India", 160, 161, "India"),
	)

	list, err := db.ListMatches(Filter{})
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(list))
	}
	// Ordered by match_date DESC: 1002 should be first.
	if list[0].MatchID != "1002" {
		t.Errorf("expected 1002 first (newest), got %s", list[0].MatchID)
	}
	if list[0].TeamA != "England" || list[0].ScoreA != "160/6" || list[0].ScoreB != "161/9" {
		t.Errorf("summary = %+v", list[0])
	}

	since, err := db.ListMatches(Filter{SinceYear: 2020})
	if err != nil {
		t.Fatalf("ListMatches since: %v", err)
	}
	if len(since) != 1 || since[0].MatchID != "1002" {
		t.Errorf("since 2020 = %+v", since)
	}

	nz, _ := db.ListMatches(Filter{Team: "New Zealand"})
	if len(nz) != 1 || nz[0].MatchID != "1001" {
		t.Errorf("team filter = %+v", nz)
	}

	limited, _ := db.ListMatches(Filter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d", len(limited))
	}
}

func TestGetMatchByPrefix(t *testing.T) {
	db := openMemDB(t)
	seed(t, db, testMatch("1187654", "2020-01-01", 2020, "Eden Park", "", "India", "New Zealand", 180, 150, "India"))

	m, err := db.GetMatchByPrefix("11876")
	if err != nil {
		t.Fatalf("GetMatchByPrefix: %v", err)
	}
	if m == nil {
		t.Fatal("expected match, got nil")
	}
	if m.MatchID != "1187654" {
		t.Errorf("expected 1187654, got %s", m.MatchID)
	}

	none, err := db.GetMatchByPrefix("9999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if none != nil {
		t.Error("expected nil for non-matching prefix")
	}
}

func TestDeleteMatchCascades(t *testing.T) {
	db := openMemDB(t)
	seed(t, db, testMatch("1001", "2019-03-01", 2019, "Eden Park", "", "India", "New Zealand", 180, 150, "India"))

	ok, err := db.DeleteMatch("1001")
	if err != nil || !ok {
		t.Fatalf("DeleteMatch = %v, %v", ok, err)
	}
	rows, err := db.GetInnings("1001")
	if err != nil {
		t.Fatalf("GetInnings: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected innings to be deleted with the match, got %d", len(rows))
	}
	ok, _ = db.DeleteMatch("1001")
	if ok {
		t.Error("second delete should report nothing removed")
	}
}

func TestInningsRowsFilter(t *testing.T) {
	db := openMemDB(t)
	seed(t, db,
		testMatch("1001", "2019-03-01", 2019, "Eden Park", "World Cup", "India", "New Zealand", 180, 150, "India"),
		testMatch("1002", "2021-06-10", 2021, "Lord's", "", "England", "India", 160, 161, "India"),
	)

	all, err := db.InningsRows(Filter{})
	if err != nil {
		t.Fatalf("InningsRows: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(all))
	}
	if all[0].ID != "1001A" || all[3].ID != "1002B" {
		t.Errorf("unexpected order: %s .. %s", all[0].ID, all[3].ID)
	}

	wc, _ := db.InningsRows(Filter{Event: "World Cup"})
	if len(wc) != 2 {
		t.Errorf("event filter returned %d rows, want 2", len(wc))
	}
	india, _ := db.InningsRows(Filter{Team: "India"})
	if len(india) != 2 {
		t.Errorf("team filter returned %d rows, want 2", len(india))
	}
}

func TestTeamRecords(t *testing.T) {
	db := openMemDB(t)
	seed(t, db,
		testMatch("1", "2019-01-01", 2019, "Eden Park", "", "India", "New Zealand", 180, 150, "India"),
		testMatch("2", "2020-01-01", 2020, "Eden Park", "", "New Zealand", "India", 170, 171, "India"),
		testMatch("3", "2020-02-01", 2020, "Lord's", "", "England", "India", 200, 150, "England"),
		testMatch("4", "2015-02-01", 2015, "Lord's", "", "England", "India", 200, 150, "England"),
	)

	recs, err := db.TeamRecords(Filter{SinceYear: 2016})
	if err != nil {
		t.Fatalf("TeamRecords: %v", err)
	}
	byTeam := make(map[string]model.TeamRecord)
	for _, r := range recs {
		byTeam[r.Team] = r
	}
	india := byTeam["India"]
	if india.Matches != 3 || india.Wins != 2 {
		t.Errorf("India = %d/%d, want 2 wins of 3", india.Wins, india.Matches)
	}
	if india.BatFirstMatches != 1 || india.BatFirstWins != 1 || india.BowlFirstMatches != 2 || india.BowlFirstWins != 1 {
		t.Errorf("India splits = %+v", india)
	}
	if india.BatFirstRuns != 180 || india.BowlFirstRuns != 321 {
		t.Errorf("India runs = %d / %d", india.BatFirstRuns, india.BowlFirstRuns)
	}
	if byTeam["England"].Matches != 1 {
		t.Errorf("England matches since 2016 = %d, want 1", byTeam["England"].Matches)
	}
	// England 100%, India 66.7%, New Zealand 0%.
	if len(recs) != 3 || recs[0].Team != "England" || recs[1].Team != "India" || recs[2].Team != "New Zealand" {
		t.Errorf("unexpected sort order: %+v", recs)
	}

	only, _ := db.TeamRecords(Filter{Teams: []string{"India"}})
	if len(only) != 1 || only[0].Matches != 4 {
		t.Errorf("teams filter = %+v", only)
	}
}

func TestTeamTrend(t *testing.T) {
	db := openMemDB(t)
	seed(t, db,
		testMatch("1", "2019-01-01", 2019, "Eden Park", "", "India", "New Zealand", 180, 150, "India"),
		testMatch("2", "2020-01-01", 2020, "Eden Park", "", "New Zealand", "India", 170, 171, "India"),
		testMatch("3", "2020-02-01", 2020, "Lord's", "", "England", "India", 200, 150, "England"),
	)

	trend, err := db.TeamTrend("India", Filter{})
	if err != nil {
		t.Fatalf("TeamTrend: %v", err)
	}
	if len(trend) != 2 {
		t.Fatalf("expected 2 years, got %d", len(trend))
	}
	if trend[0].Year != 2019 || trend[1].Year != 2020 {
		t.Errorf("years = %d, %d", trend[0].Year, trend[1].Year)
	}
	if trend[1].Matches != 2 || trend[1].Wins != 1 {
		t.Errorf("2020 = %+v", trend[1])
	}

	vs, err := db.TeamTrend("India", Filter{Opponent: "England"})
	if err != nil {
		t.Fatalf("TeamTrend vs: %v", err)
	}
	if len(vs) != 1 || vs[0].Matches != 1 || vs[0].Wins != 0 {
		t.Errorf("vs England = %+v", vs)
	}
}

func TestPhaseSplits(t *testing.T) {
	db := openMemDB(t)
	seed(t, db,
		testMatch("1", "2019-01-01", 2019, "Eden Park", "", "India", "New Zealand", 180, 150, "India"),
		testMatch("2", "2019-02-01", 2019, "Eden Park", "", "India", "England", 200, 150, "India"),
		testMatch("3", "2019-03-01", 2019, "Lord's", "", "England", "India", 200, 160, "England"),
	)

	splits, err := db.PhaseSplits("India", Filter{})
	if err != nil {
		t.Fatalf("PhaseSplits: %v", err)
	}
	if len(splits) != 2 {
		t.Fatalf("expected A and B splits, got %d", len(splits))
	}
	first, second := splits[0], splits[1]
	if first.Innings != model.InningsFirst || first.Count != 2 {
		t.Errorf("first = %+v", first)
	}
	if first.Runs[model.PhasePowerplay] != 100 || first.Runs[model.PhaseMiddle] != 220 {
		t.Errorf("first runs = %v", first.Runs)
	}
	if got := first.AvgRuns(model.PhaseMiddle); got != 110 {
		t.Errorf("avg middle runs = %v, want 110", got)
	}
	if second.Innings != model.InningsSecond || second.Count != 1 || second.Wickets[model.PhaseMiddle] != 4 {
		t.Errorf("second = %+v", second)
	}
}

func TestVenueAverages(t *testing.T) {
	db := openMemDB(t)
	seed(t, db,
		testMatch("1", "2019-01-01", 2019, "Eden Park", "", "India", "New Zealand", 181, 150, "India"),
		testMatch("2", "2019-02-01", 2019, "Eden Park", "", "India", "England", 200, 150, "India"),
		testMatch("3", "2019-03-01", 2019, "Lord's", "", "England", "India", 150, 140, "England"),
	)

	avgs, err := db.VenueAverages(Filter{}, 2)
	if err != nil {
		t.Fatalf("VenueAverages: %v", err)
	}
	if len(avgs) != 2 {
		t.Fatalf("expected only Eden Park A and B (min 2 innings), got %+v", avgs)
	}
	top := avgs[0]
	if top.Venue != "Eden Park" || top.Innings != model.InningsFirst {
		t.Errorf("top = %+v", top)
	}
	// (181 + 200) / 2 floors to 190.
	if top.AvgScore() != 190 {
		t.Errorf("AvgScore = %d, want 190", top.AvgScore())
	}
	if top.City != "City of Eden Park" {
		t.Errorf("City = %q", top.City)
	}

	all, _ := db.VenueAverages(Filter{}, 1)
	if len(all) != 4 {
		t.Errorf("min 1 innings returned %d rows, want 4", len(all))
	}
}

func TestWinComposition(t *testing.T) {
	db := openMemDB(t)
	seed(t, db,
		// Eden Park first-innings par: (180+200+160)/3 = 180.
		testMatch("2001", "2019-03-01", 2019, "Eden Park", "", "India", "New Zealand", 180, 150, "India"),
		testMatch("2002", "2020-03-01", 2020, "Eden Park", "", "New Zealand", "India", 200, 170, "New Zealand"),
		testMatch("2003", "2021-03-01", 2021, "Eden Park", "", "India", "New Zealand", 160, 165, "New Zealand"),
		// MCG par: (150+140)/2 = 145.
		testMatch("2004", "2021-11-01", 2021, "MCG", "", "Australia", "India", 150, 151, "India"),
		testMatch("2005", "2021-11-05", 2021, "MCG", "", "Australia", "England", 140, 120, "Australia"),
	)

	got, err := db.WinComposition(Filter{})
	if err != nil {
		t.Fatalf("WinComposition: %v", err)
	}
	want := []model.Matchup{
		{Team: "Australia", Opponent: "England", Won: true, Matches: 1, Bowling: 1},
		{Team: "Australia", Opponent: "India", Won: false, Matches: 1, Batting: 1},
		{Team: "England", Opponent: "Australia", Won: false, Matches: 1, Bowling: 1},
		{Team: "India", Opponent: "Australia", Won: true, Matches: 1, Batting: 1},
		{Team: "India", Opponent: "New Zealand", Won: true, Matches: 1, Both: 1},
		{Team: "India", Opponent: "New Zealand", Won: false, Matches: 2},
		{Team: "New Zealand", Opponent: "India", Won: true, Matches: 2, Both: 2},
		{Team: "New Zealand", Opponent: "India", Won: false, Matches: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("want %d matchups, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("matchup %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	india, err := db.WinComposition(Filter{Team: "India", Opponent: "New Zealand"})
	if err != nil {
		t.Fatalf("WinComposition(India v NZ): %v", err)
	}
	if len(india) != 2 || india[0] != want[4] || india[1] != want[5] {
		t.Errorf("India v New Zealand: got %+v", india)
	}
}

func TestIngestRunsAndOverview(t *testing.T) {
	db := openMemDB(t)
	seed(t, db,
		testMatch("1", "2019-01-01", 2019, "Eden Park", "World Cup", "India", "New Zealand", 180, 150, "India"),
		testMatch("2", "2021-02-01", 2021, "Lord's", "", "England", "India", 200, 150, "England"),
	)
	run := model.IngestRun{ID: "run-1", StartedAt: "2024-01-01T00:00:00Z", DataDir: "/data", Seen: 3, Stored: 2, Skipped: 1}
	if err := db.InsertIngestRun(run); err != nil {
		t.Fatalf("InsertIngestRun: %v", err)
	}

	runs, err := db.ListIngestRuns(5)
	if err != nil {
		t.Fatalf("ListIngestRuns: %v", err)
	}
	if len(runs) != 1 || runs[0] != run {
		t.Errorf("runs = %+v", runs)
	}

	o, err := db.GetDBOverview()
	if err != nil {
		t.Fatalf("GetDBOverview: %v", err)
	}
	if o.Matches != 2 || o.Innings != 4 || o.Teams != 3 || o.Venues != 2 || o.Events != 1 || o.IngestRuns != 1 {
		t.Errorf("overview = %+v", o)
	}
	if o.EarliestDate != "2019-01-01" || o.LatestDate != "2021-02-01" {
		t.Errorf("date range = %s..%s", o.EarliestDate, o.LatestDate)
	}

	events, err := db.Events()
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if events["World Cup"] != 1 || len(events) != 1 {
		t.Errorf("events = %v", events)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	seed(t, db, testMatch("1001", "2019-03-01", 2019, "Eden Park", "", "India", "New Zealand", 180, 150, "India"))

	cols, rows, err := db.QueryRaw("SELECT id, total_runs, NULL AS empty_col FROM innings ORDER BY id")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 3 || cols[1] != "total_runs" {
		t.Errorf("cols = %v", cols)
	}
	if len(rows) != 2 || rows[0][0] != "1001A" || rows[0][1] != "180" || rows[0][2] != "NULL" {
		t.Errorf("rows = %v", rows)
	}

	if _, _, err := db.QueryRaw("SELECT * FROM no_such_table"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestPlaceholders(t *testing.T) {
	cases := map[int]string{0: "", 1: "?", 3: "?,?,?"}
	for n, want := range cases {
		if got := placeholders(n); got != want {
			t.Errorf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}
