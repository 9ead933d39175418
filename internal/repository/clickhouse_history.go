package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"NavPulse/internal/domain/models"
	"NavPulse/internal/domain/repository"
)

// ClickHouseHistory implements HistoryStore for ClickHouse: one row per fund
// per evaluation run.
type ClickHouseHistory struct {
	db    *sql.DB
	table string
}

// NewClickHouseHistory creates a ClickHouse-backed history store.
func NewClickHouseHistory(db *sql.DB, table string) repository.HistoryStore {
	return &ClickHouseHistory{db: db, table: table}
}

// Schema returns the idempotent DDL for the history table.
func Schema(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ran_at       DateTime,
		fund_id      String,
		latest_date  Date,
		latest_value Nullable(Float64),
		rsi          Nullable(Float64),
		ma_ratio     Nullable(Float64),
		macd_diff    Nullable(Float64),
		bb_upper     Nullable(Float64),
		bb_lower     Nullable(Float64),
		growth_pct   Nullable(Float64),
		action       String,
		amplified    UInt8,
		trend        String,
		held         UInt8,
		failure      String
	) ENGINE = MergeTree() ORDER BY (fund_id, ran_at)`, table)}
}

const historyCols = "ran_at, fund_id, latest_date, latest_value, rsi, ma_ratio, macd_diff, bb_upper, bb_lower, growth_pct, action, amplified, trend, held, failure"

func (s *ClickHouseHistory) StoreBatch(ctx context.Context, report *models.BatchReport) error {
	if report == nil || len(report.Results) == 0 {
		return nil
	}

	values := make([]string, 0, len(report.Results))
	args := make([]interface{}, 0, len(report.Results)*15)
	for _, r := range report.Results {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			report.RanAt,
			r.FundID,
			r.LatestDate,
			readingArg(r.LatestValue),
			readingArg(r.RSI),
			readingArg(r.MARatio),
			readingArg(r.MACDDiff),
			readingArg(r.BBUpper),
			readingArg(r.BBLower),
			readingArg(r.Growth),
			r.Signal.Action.String(),
			boolArg(r.Signal.Amplified),
			r.Trend.String(),
			boolArg(r.Held),
			r.Failure,
		)
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, historyCols, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store history batch: %w", err)
	}
	return nil
}

func (s *ClickHouseHistory) Query(ctx context.Context, fundID string, limit int) ([]models.Result, error) {
	if limit <= 0 {
		limit = 100
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE fund_id = ? ORDER BY ran_at DESC LIMIT ?", historyCols, s.table)
	rows, err := s.db.QueryContext(ctx, q, fundID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []models.Result
	for rows.Next() {
		var (
			r         models.Result
			ranAt     time.Time
			latest    sql.NullFloat64
			rsi       sql.NullFloat64
			maRatio   sql.NullFloat64
			macdDiff  sql.NullFloat64
			bbUpper   sql.NullFloat64
			bbLower   sql.NullFloat64
			growth    sql.NullFloat64
			action    string
			amplified uint8
			trend     string
			held      uint8
		)
		if err := rows.Scan(&ranAt, &r.FundID, &r.LatestDate, &latest, &rsi, &maRatio,
			&macdDiff, &bbUpper, &bbLower, &growth, &action, &amplified, &trend, &held, &r.Failure); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		r.LatestValue = nullReading(latest)
		r.RSI = nullReading(rsi)
		r.MARatio = nullReading(maRatio)
		r.MACDDiff = nullReading(macdDiff)
		r.BBUpper = nullReading(bbUpper)
		r.BBLower = nullReading(bbLower)
		r.Growth = nullReading(growth)
		r.Signal = models.Signal{Action: models.ParseActionSignal(action), Amplified: amplified != 0}
		r.Trend = models.ParseMarketTrend(trend)
		r.Held = held != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseHistory) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func readingArg(r models.Reading) interface{} {
	if !r.Defined {
		return nil
	}
	return r.Value
}

func boolArg(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func nullReading(v sql.NullFloat64) models.Reading {
	if !v.Valid {
		return models.Undefined()
	}
	return models.Def(v.Float64)
}
