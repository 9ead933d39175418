// Package navstore persists one NAV series per fund as a CSV file under a
// configured cache root. A series file is only ever written by the task that
// owns the fund for the duration of a run, so there is no cross-process or
// cross-task locking.
package navstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"NavPulse/internal/domain/models"
	"NavPulse/pkg/logger"
	"NavPulse/pkg/util"
)

// Store reads and writes fund NAV cache files.
type Store struct {
	dir    string
	logger *logger.Logger
}

// New creates a Store rooted at dir, creating it if needed.
func New(dir string, l *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir, logger: l}, nil
}

func (s *Store) path(fundID string) string {
	return filepath.Join(s.dir, fundID+".csv")
}

// Load returns the cached series for a fund. A missing file yields an empty
// series and no error. Rows that fail to parse are skipped with a warning;
// an unreadable file is a CacheIOError.
func (s *Store) Load(fundID string) (models.NavSeries, error) {
	f, err := os.Open(s.path(fundID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.NavSeries{}, nil
		}
		return nil, &models.CacheIOError{FundID: fundID, Op: "load", Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &models.CacheIOError{FundID: fundID, Op: "load", Err: err}
	}

	points := make([]models.NavPoint, 0, len(rows))
	for i, row := range rows {
		if i == 0 && row[0] == "date" {
			continue // header
		}
		d, ok := util.ParseDate(row[0])
		if !ok {
			s.warn(fundID, fmt.Sprintf("bad date %q at row %d", row[0], i))
			continue
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			s.warn(fundID, fmt.Sprintf("bad value %q at row %d", row[1], i))
			continue
		}
		points = append(points, models.NavPoint{Date: d, Value: v})
	}

	// Files are written sorted, but merge anyway so a hand-edited cache
	// still satisfies the ascending/no-duplicates invariant.
	return models.NavSeries{}.Merge(points), nil
}

// Save atomically overwrites the fund's cache file: the series is written to
// a temp file in the same directory, flushed, closed, and renamed over the
// target so readers never observe a partial file.
func (s *Store) Save(fundID string, series models.NavSeries) error {
	tmp, err := os.CreateTemp(s.dir, fundID+".*.tmp")
	if err != nil {
		return &models.CacheIOError{FundID: fundID, Op: "save", Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		// No-ops once the rename has happened.
		tmp.Close()
		os.Remove(tmpName)
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"date", "value"}); err != nil {
		return &models.CacheIOError{FundID: fundID, Op: "save", Err: err}
	}
	for _, p := range series {
		rec := []string{util.FormatDate(p.Date), strconv.FormatFloat(p.Value, 'f', -1, 64)}
		if err := w.Write(rec); err != nil {
			return &models.CacheIOError{FundID: fundID, Op: "save", Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &models.CacheIOError{FundID: fundID, Op: "save", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &models.CacheIOError{FundID: fundID, Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &models.CacheIOError{FundID: fundID, Op: "save", Err: err}
	}
	if err := os.Rename(tmpName, s.path(fundID)); err != nil {
		return &models.CacheIOError{FundID: fundID, Op: "save", Err: err}
	}
	return nil
}

func (s *Store) warn(fundID, msg string) {
	if s.logger != nil {
		s.logger.Warn("cache row skipped", logger.String("fund", fundID), logger.String("reason", msg))
	}
}
