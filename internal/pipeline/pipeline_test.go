package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/crickmetrics/internal/model"
	"github.com/pable/crickmetrics/internal/pipeline"
	"github.com/pable/crickmetrics/internal/storage"
	"github.com/pable/crickmetrics/internal/venue"
)

const header = "match_id,season,start_date,venue,innings,ball,batting_team,bowling_team,runs_off_bat,extras,wicket_type\n"

// writeMatch writes a ball file and info file for a short match. Each innings
// has one ball per phase: 4 runs in the powerplay, 1 in the middle overs with
// a catch, and 6 in the death overs.
func writeMatch(t *testing.T, dir, id, date, venueName, teamA, teamB, winner string, extra ...string) {
	t.Helper()
	var b strings.Builder
	b.WriteString(header)
	for inn, teams := range [][2]string{{teamA, teamB}, {teamB, teamA}} {
		for _, row := range [][2]string{{"0.1", "4,0,"}, {"7.3", "0,1,caught"}, {"18.2", "6,0,"}} {
			fmt.Fprintf(&b, "%s,2020,%s,\"%s\",%d,%s,%s,%s,%s\n", id, date, venueName, inn+1, row[0], teams[0], teams[1], row[1])
		}
	}
	for _, row := range extra {
		b.WriteString(row + "\n")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".csv"), []byte(b.String()), 0o600))

	info := "version,1.3.0\n" +
		"info,team," + teamA + "\n" +
		"info,team," + teamB + "\n" +
		"info,date," + date + "\n" +
		"info,event,Test Series\n" +
		"info,venue,\"" + venueName + "\"\n"
	if winner != "" {
		info += "info,winner," + winner + "\n"
	} else {
		info += "info,outcome,no result\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+"_info.csv"), []byte(info), 0o600))
}

func openStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeMatch(t, dir, "200", "2020-01-02", "Eden Park", "India", "New Zealand", "India")
	writeMatch(t, dir, "100", "2020-01-01", "Eden Park", "India", "New Zealand", "India")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o700))

	files, err := pipeline.Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "100", files[0].MatchID)
	assert.Equal(t, filepath.Join(dir, "100_info.csv"), files[0].InfoPath)

	single, err := pipeline.Scan(files[1].BallPath)
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, "200", single[0].MatchID)

	_, err = pipeline.Scan(filepath.Join(dir, "100_info.csv"))
	assert.Error(t, err)
	_, err = pipeline.Scan(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestProcessMatch(t *testing.T) {
	dir := t.TempDir()
	writeMatch(t, dir, "1001", "2021-11-14", "Dubai International Cricket Stadium, Dubai", "New Zealand", "Australia", "Australia",
		"1001,2020,2021-11-14,Dubai,3,0.1,New Zealand,Australia,1,0,",
		"1001,2020,2021-11-14,Dubai,1,bad,New Zealand,Australia,1,0,",
	)
	files, err := pipeline.Scan(dir)
	require.NoError(t, err)

	res := pipeline.ProcessMatch(files[0], venue.Default())
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 1, res.Malformed)

	rec := res.Record
	assert.Equal(t, "1001", rec.Info.MatchID)
	assert.Equal(t, 2021, rec.Year)
	assert.Equal(t, "Dubai International Cricket Stadium", rec.Venue)
	assert.Equal(t, "1001.csv", rec.SourceFile)

	a, b := rec.Innings[0], rec.Innings[1]
	assert.Equal(t, "1001A", a.ID)
	assert.Equal(t, "New Zealand", a.BattingTeam)
	assert.Equal(t, model.PhaseResult{Runs: 4}, a.Powerplay)
	assert.Equal(t, model.PhaseResult{Runs: 1, Wickets: 1}, a.Middle)
	assert.Equal(t, model.PhaseResult{Runs: 6}, a.Death)
	assert.Equal(t, "1001B", b.ID)
	assert.Equal(t, "Australia", b.BattingTeam)
	assert.Equal(t, 11, b.TotalRuns())
}

func TestProcessMatch_NoResult(t *testing.T) {
	dir := t.TempDir()
	writeMatch(t, dir, "7", "2020-01-01", "Eden Park", "India", "New Zealand", "")
	files, err := pipeline.Scan(dir)
	require.NoError(t, err)

	res := pipeline.ProcessMatch(files[0], venue.Default())
	assert.ErrorIs(t, res.Err, pipeline.ErrNoResult)
}

func TestProcessMatch_MissingInfo(t *testing.T) {
	dir := t.TempDir()
	writeMatch(t, dir, "7", "2020-01-01", "Eden Park", "India", "New Zealand", "India")
	require.NoError(t, os.Remove(filepath.Join(dir, "7_info.csv")))
	files, err := pipeline.Scan(dir)
	require.NoError(t, err)

	res := pipeline.ProcessMatch(files[0], venue.Default())
	require.Error(t, res.Err)
	assert.NotErrorIs(t, res.Err, pipeline.ErrNoResult)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 12; i++ {
		writeMatch(t, dir, fmt.Sprintf("%d", 5000+i), "2022-10-23", "Melbourne Cricket Ground, Melbourne", "Pakistan", "India", "India")
	}
	writeMatch(t, dir, "6000", "2022-10-24", "Eden Park", "India", "New Zealand", "")
	// Only the second innings: the first is missing.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "6001.csv"),
		[]byte(header+"6001,2022,2022-10-25,Eden Park,2,0.1,India,New Zealand,1,0,\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "6001_info.csv"), []byte("info,winner,India\n"), 0o600))

	db := openStore(t)
	batch, err := pipeline.Run(context.Background(), dir, db, pipeline.Options{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, 14, batch.Run.Seen)
	assert.Equal(t, 12, batch.Run.Stored)
	assert.Equal(t, 1, batch.Run.Skipped)
	assert.Equal(t, 1, batch.Run.Failed)
	assert.Len(t, batch.StoredIDs, 12)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, "6001", batch.Failures[0].MatchID)
	require.Len(t, batch.Skips, 1)
	assert.Equal(t, "no result", batch.Skips[0].Reason)

	rows, err := db.GetInnings("5003")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Melbourne Cricket Ground", rows[0].Venue)
	assert.Equal(t, "Melbourne", rows[0].City, "city filled from the venue directory")
	assert.Equal(t, 11, rows[0].TotalRuns())
	assert.True(t, rows[1].Won())

	runs, err := db.ListIngestRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, batch.Run, runs[0])

	// A second run skips everything already stored.
	again, err := pipeline.Run(context.Background(), dir, db, pipeline.Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Run.Stored)
	assert.Equal(t, 13, again.Run.Skipped)
	assert.NotEqual(t, batch.Run.ID, again.Run.ID)

	forced, err := pipeline.Run(context.Background(), dir, db, pipeline.Options{Workers: 2, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 12, forced.Run.Stored)

	list, err := db.ListMatches(storage.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 12, "re-ingest replaces rather than duplicates")
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeMatch(t, dir, fmt.Sprintf("%d", 100+i), "2020-01-01", "Eden Park", "India", "New Zealand", "India")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := pipeline.Run(ctx, dir, openStore(t), pipeline.Options{Workers: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, batch)
	assert.Equal(t, 5, batch.Run.Seen)
}

func TestRun_StoreErrorsAreRecorded(t *testing.T) {
	dir := t.TempDir()
	writeMatch(t, dir, "1", "2020-01-01", "Eden Park", "India", "New Zealand", "India")
	writeMatch(t, dir, "2", "2020-01-02", "Eden Park", "India", "New Zealand", "India")

	store := &flakyStore{failID: "2"}
	batch, err := pipeline.Run(context.Background(), dir, store, pipeline.Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Run.Stored)
	assert.Equal(t, 1, batch.Run.Failed)
	assert.Equal(t, []string{"1"}, store.inserted)
	assert.Equal(t, 1, store.runs)
}

type flakyStore struct {
	mu       sync.Mutex
	failID   string
	inserted []string
	runs     int
}

func (s *flakyStore) ListMatchIDs() ([]string, error)  { return nil, nil }
func (s *flakyStore) MatchExists(string) (bool, error) { return false, nil }

func (s *flakyStore) InsertIngestRun(model.IngestRun) error {
	s.runs++
	return nil
}

func (s *flakyStore) InsertMatch(rec model.MatchRecord, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Info.MatchID == s.failID {
		return errors.New("disk full")
	}
	s.inserted = append(s.inserted, rec.Info.MatchID)
	return nil
}

func TestStoredSet(t *testing.T) {
	calls := 0
	exists := func(id string) (bool, error) {
		calls++
		return id == "a", nil
	}
	s := pipeline.NewStoredSet([]string{"a"}, exists)

	ok, err := s.Contains("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls, "bloom positive is confirmed")

	ok, err = s.Contains("never-added")
	require.NoError(t, err)
	assert.False(t, ok)

	s.Add("b")
	ok, _ = s.Contains("b")
	assert.False(t, ok, "confirmation from the store has the final word")

	bare := pipeline.NewStoredSet(nil, nil)
	bare.Add("x")
	ok, err = bare.Contains("x")
	require.NoError(t, err)
	assert.True(t, ok)
}
