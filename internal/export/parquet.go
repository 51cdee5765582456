package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/pable/crickmetrics/internal/model"
)

type parquetRow struct {
	ID           string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Year         int32  `parquet:"name=year, type=INT32"`
	Venue        string `parquet:"name=venue, type=BYTE_ARRAY, convertedtype=UTF8"`
	TeamA        string `parquet:"name=team_a, type=BYTE_ARRAY, convertedtype=UTF8"`
	TeamB        string `parquet:"name=team_b, type=BYTE_ARRAY, convertedtype=UTF8"`
	PPRuns       int32  `parquet:"name=runs_in_powerplay, type=INT32"`
	PPWickets    int32  `parquet:"name=wickets_lost_in_powerplay, type=INT32"`
	MidRuns      int32  `parquet:"name=runs_in_middle_overs, type=INT32"`
	MidWickets   int32  `parquet:"name=wickets_lost_in_middle_overs, type=INT32"`
	DeathRuns    int32  `parquet:"name=runs_in_death_overs, type=INT32"`
	DeathWickets int32  `parquet:"name=wickets_lost_in_death_overs, type=INT32"`
	TotalRuns    int32  `parquet:"name=total_score, type=INT32"`
	TotalWickets int32  `parquet:"name=total_wickets, type=INT32"`
	City         string `parquet:"name=city, type=BYTE_ARRAY, convertedtype=UTF8"`
	Event        string `parquet:"name=event, type=BYTE_ARRAY, convertedtype=UTF8"`
	TossWinner   string `parquet:"name=toss_winner, type=BYTE_ARRAY, convertedtype=UTF8"`
	TossDecision string `parquet:"name=toss_decision, type=BYTE_ARRAY, convertedtype=UTF8"`
	Winner       string `parquet:"name=winner, type=BYTE_ARRAY, convertedtype=UTF8"`
	MatchID      string `parquet:"name=match_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Innings      string `parquet:"name=innings_number, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// memFile collects the writer's output; parquet-go needs a source.ParquetFile.
type memFile struct {
	buffer *bytes.Buffer
}

func newMemFile() *memFile {
	return &memFile{buffer: &bytes.Buffer{}}
}

func (m *memFile) Create(string) (source.ParquetFile, error) { return m, nil }
func (m *memFile) Open(string) (source.ParquetFile, error)   { return m, nil }
func (m *memFile) Seek(int64, int) (int64, error)            { return int64(m.buffer.Len()), nil }
func (m *memFile) Read([]byte) (int, error)                  { return 0, fmt.Errorf("read not supported") }
func (m *memFile) Write(b []byte) (int, error)               { return m.buffer.Write(b) }
func (m *memFile) Close() error                              { return nil }

// WriteParquet encodes rows as a single parquet file. compression is one of
// snappy (default), gzip or none.
func WriteParquet(w io.Writer, rows []model.InningsRow, compression string) error {
	mem := newMemFile()
	pw, err := writer.NewParquetWriter(mem, new(parquetRow), 1)
	if err != nil {
		return fmt.Errorf("new parquet writer: %w", err)
	}

	switch strings.ToLower(compression) {
	case "", "snappy":
		pw.CompressionType = parquet.CompressionCodec_SNAPPY
	case "gzip":
		pw.CompressionType = parquet.CompressionCodec_GZIP
	case "none", "uncompressed":
		pw.CompressionType = parquet.CompressionCodec_UNCOMPRESSED
	default:
		pw.WriteStop()
		return fmt.Errorf("unknown parquet compression %q", compression)
	}

	for i := range rows {
		r := &rows[i]
		rec := parquetRow{
			ID:           r.ID,
			Year:         int32(r.Year),
			Venue:        r.Venue,
			TeamA:        r.BattingTeam,
			TeamB:        r.BowlingTeam,
			PPRuns:       int32(r.Powerplay.Runs),
			PPWickets:    int32(r.Powerplay.Wickets),
			MidRuns:      int32(r.Middle.Runs),
			MidWickets:   int32(r.Middle.Wickets),
			DeathRuns:    int32(r.Death.Runs),
			DeathWickets: int32(r.Death.Wickets),
			TotalRuns:    int32(r.TotalRuns()),
			TotalWickets: int32(r.TotalWickets()),
			City:         r.City,
			Event:        r.Event,
			TossWinner:   r.TossWinner,
			TossDecision: r.TossDecision,
			Winner:       r.Winner,
			MatchID:      r.MatchID,
			Innings:      r.Innings.Tag(),
		}
		if err := pw.Write(rec); err != nil {
			pw.WriteStop()
			return fmt.Errorf("write parquet row %s: %w", r.ID, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet: %w", err)
	}

	if _, err := w.Write(mem.buffer.Bytes()); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}
