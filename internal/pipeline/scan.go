package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pable/crickmetrics/internal/parser"
)

// MatchFiles is the ball-by-ball file of one match and its info file.
type MatchFiles struct {
	MatchID  string
	BallPath string
	InfoPath string
}

// Scan lists the matches under dir, ordered by file name. A path naming a
// single ball file yields just that match.
func Scan(dir string) ([]MatchFiles, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if !st.IsDir() {
		if !parser.IsBallFile(filepath.Base(dir)) {
			return nil, fmt.Errorf("scan %s: not a ball-by-ball csv file", dir)
		}
		return []MatchFiles{newMatchFiles(dir)}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	var out []MatchFiles
	for _, e := range entries {
		if e.IsDir() || !parser.IsBallFile(e.Name()) {
			continue
		}
		out = append(out, newMatchFiles(filepath.Join(dir, e.Name())))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BallPath < out[j].BallPath })
	return out, nil
}

func newMatchFiles(ballPath string) MatchFiles {
	return MatchFiles{
		MatchID:  strings.TrimSuffix(filepath.Base(ballPath), ".csv"),
		BallPath: ballPath,
		InfoPath: parser.InfoPath(ballPath),
	}
}
