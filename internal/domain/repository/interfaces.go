package repository

import (
	"context"
	"time"

	"NavPulse/internal/domain/models"
)

// SeriesStore owns the persisted NAV series, one file per fund id.
type SeriesStore interface {
	// Load returns the cached series, empty (not an error) when absent.
	Load(fundID string) (models.NavSeries, error)
	// Save atomically overwrites the fund's cache file.
	Save(fundID string, series models.NavSeries) error
}

// NavSource supplies NAV points newer than the watermark. Implementations
// paginate internally, sort every page, skip malformed pages, and stop once
// a page is entirely at or before the watermark. Duplicate points across
// retries are acceptable; the merge step deduplicates.
type NavSource interface {
	Fetch(ctx context.Context, fundID string, watermark time.Time) ([]models.NavPoint, error)
}

// ResultPublisher pushes finished result records to an external sink.
type ResultPublisher interface {
	PublishBatch(ctx context.Context, report *models.BatchReport) error
	Close() error
}

// HistoryStore persists one evaluation row per fund per run.
type HistoryStore interface {
	StoreBatch(ctx context.Context, report *models.BatchReport) error
	Query(ctx context.Context, fundID string, limit int) ([]models.Result, error)
	Health(ctx context.Context) error
}

// Metrics records operational counters for a run.
type Metrics interface {
	RecordFetchPage(fundID string)
	RecordError(kind string)
	RecordLastNav(fundID string, value float64)
	RecordEvalDuration(fundID string, seconds float64)
	RecordSignal(signal string)
}
