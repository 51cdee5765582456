package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pable/crickmetrics/internal/logger"
	"github.com/pable/crickmetrics/internal/model"
	"github.com/pable/crickmetrics/internal/venue"
)

// Store is the persistence the pipeline writes to.
type Store interface {
	ListMatchIDs() ([]string, error)
	MatchExists(matchID string) (bool, error)
	InsertMatch(rec model.MatchRecord, runID string) error
	InsertIngestRun(run model.IngestRun) error
}

// Options configures Run.
type Options struct {
	Workers int
	Force   bool // re-ingest matches that are already stored
	Venues  *venue.Directory
	Log     *logger.Log
}

// Skip is a match that was deliberately not stored.
type Skip struct {
	MatchID string
	Reason  string
}

// Failure is a match whose files could not be turned into a record.
type Failure struct {
	MatchID string
	Err     error
}

// Batch accumulates the outcome of one Run.
type Batch struct {
	Run       model.IngestRun
	StoredIDs []string
	Skips     []Skip
	Failures  []Failure
	Dropped   int // rows outside innings 1 and 2, across stored matches
	Malformed int
}

// Run ingests every match under dataDir into store. Parsing and assembly run
// on opts.Workers goroutines; all writes happen on the calling goroutine. A
// match that fails is recorded in the batch and never stops the run.
func Run(ctx context.Context, dataDir string, store Store, opts Options) (*Batch, error) {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	dir := opts.Venues
	if dir == nil {
		dir = venue.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	files, err := Scan(dataDir)
	if err != nil {
		return nil, err
	}

	ids, err := store.ListMatchIDs()
	if err != nil {
		return nil, fmt.Errorf("list stored matches: %w", err)
	}
	stored := NewStoredSet(ids, store.MatchExists)

	batch := &Batch{Run: model.IngestRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		DataDir:   dataDir,
		Seen:      len(files),
	}}
	plog := log.WithComponent("pipeline").WithFields(logger.Fields{"run_id": batch.Run.ID})
	plog.WithFields(logger.Fields{"matches": len(files), "workers": workers}).Info("ingest started")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	results := make(chan Result, workers)

	var waitErr error
	go func() {
		defer close(results)
		for _, f := range files {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				res := process(f, dir, stored, opts.Force)
				select {
				case results <- res:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		waitErr = g.Wait()
	}()

	for res := range results {
		batch.add(res, store, stored, plog)
	}

	if waitErr == nil {
		waitErr = ctx.Err()
	}
	if err := store.InsertIngestRun(batch.Run); err != nil {
		return batch, fmt.Errorf("record ingest run: %w", err)
	}
	plog.WithFields(logger.Fields{
		"stored":  batch.Run.Stored,
		"skipped": batch.Run.Skipped,
		"failed":  batch.Run.Failed,
	}).Info("ingest finished")
	if waitErr != nil {
		return batch, fmt.Errorf("ingest interrupted: %w", waitErr)
	}
	return batch, nil
}

func process(f MatchFiles, dir *venue.Directory, stored *StoredSet, force bool) Result {
	if !force {
		ok, err := stored.Contains(f.MatchID)
		if err != nil {
			return Result{Files: f, Err: fmt.Errorf("check stored: %w", err)}
		}
		if ok {
			return Result{Files: f, Err: ErrAlreadyStored}
		}
	}
	return ProcessMatch(f, dir)
}

// add folds one result into the batch, storing the record when it is good.
func (b *Batch) add(res Result, store Store, stored *StoredSet, log *logger.Entry) {
	id := res.Files.MatchID
	mlog := log.WithFields(logger.Fields{"match_id": id})

	switch {
	case errors.Is(res.Err, ErrAlreadyStored):
		b.skip(id, "already stored")
		mlog.Debug("skipped: already stored")
		return
	case errors.Is(res.Err, ErrNoResult):
		b.skip(id, "no result")
		mlog.Debug("skipped: no result")
		return
	case res.Err != nil:
		b.fail(id, res.Err)
		mlog.WithError(res.Err).Warn("match failed")
		return
	}

	if err := store.InsertMatch(res.Record, b.Run.ID); err != nil {
		b.fail(id, fmt.Errorf("store: %w", err))
		mlog.WithError(err).Error("store failed")
		return
	}
	stored.Add(res.Record.Info.MatchID)
	b.StoredIDs = append(b.StoredIDs, res.Record.Info.MatchID)
	b.Run.Stored++
	b.Dropped += res.Dropped
	b.Malformed += res.Malformed

	if res.Dropped > 0 || res.Malformed > 0 {
		mlog.WithFields(logger.Fields{
			"dropped_rows":   res.Dropped,
			"malformed_rows": res.Malformed,
		}).Warn("rows ignored")
	}
}

func (b *Batch) skip(id, reason string) {
	b.Skips = append(b.Skips, Skip{MatchID: id, Reason: reason})
	b.Run.Skipped++
}

func (b *Batch) fail(id string, err error) {
	b.Failures = append(b.Failures, Failure{MatchID: id, Err: err})
	b.Run.Failed++
}
