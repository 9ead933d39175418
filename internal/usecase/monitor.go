package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"NavPulse/internal/allocator"
	"NavPulse/internal/domain/models"
	drepo "NavPulse/internal/domain/repository"
	"NavPulse/internal/trend"
	"NavPulse/pkg/cache"
	"NavPulse/pkg/logger"
	"NavPulse/pkg/util"
)

const latestReportKey = "navpulse:latest_report"

// Monitor orchestrates a whole evaluation run: benchmark first to fix the
// market trend, then all funds through the scheduler, then allocation, then
// fan-out to the publisher, history store, and report cache.
type Monitor struct {
	sched     *Scheduler
	alloc     *allocator.Allocator
	publisher drepo.ResultPublisher
	history   drepo.HistoryStore
	reports   cache.Service
	log       *logger.Logger

	funds     []string
	benchmark string
	holdings  map[string]bool
	holidays  map[string]bool
	reportTTL time.Duration

	running int32
	mu      sync.RWMutex
	latest  *models.BatchReport
}

// MonitorOption configures the Monitor.
type MonitorOption func(*Monitor)

// NewMonitor creates a Monitor for the given fund universe.
func NewMonitor(sched *Scheduler, alloc *allocator.Allocator, funds []string, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		sched:     sched,
		alloc:     alloc,
		funds:     funds,
		holdings:  map[string]bool{},
		holidays:  map[string]bool{},
		log:       logger.Nop(),
		reportTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithBenchmark designates the benchmark fund id driving the trend overlay.
func WithBenchmark(id string) MonitorOption {
	return func(m *Monitor) { m.benchmark = id }
}

// WithHoldings marks fund ids currently held.
func WithHoldings(ids []string) MonitorOption {
	return func(m *Monitor) {
		for _, id := range ids {
			m.holdings[id] = true
		}
	}
}

// WithHolidays sets the no-trading dates on which fetching is skipped.
func WithHolidays(dates map[string]bool) MonitorOption {
	return func(m *Monitor) { m.holidays = dates }
}

// WithPublisher sets the downstream result publisher.
func WithPublisher(p drepo.ResultPublisher) MonitorOption {
	return func(m *Monitor) { m.publisher = p }
}

// WithHistory sets the evaluation history store.
func WithHistory(h drepo.HistoryStore) MonitorOption {
	return func(m *Monitor) { m.history = h }
}

// WithReportCache caches the latest report under a TTL.
func WithReportCache(c cache.Service, ttl time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.reports = c
		if ttl > 0 {
			m.reportTTL = ttl
		}
	}
}

// WithMonitorLogger sets the logger.
func WithMonitorLogger(l *logger.Logger) MonitorOption {
	return func(m *Monitor) { m.log = l }
}

// ErrRunInProgress is returned when a batch is already being evaluated.
var ErrRunInProgress = errors.New("monitor: run already in progress")

// Run executes one full batch over the configured universe.
func (m *Monitor) Run(ctx context.Context) (*models.BatchReport, error) {
	return m.RunWith(ctx, nil, 0)
}

// RunWith executes one batch, optionally restricted to a subset of the
// configured funds and with a one-off budget override. Only one run may be
// in flight at a time. Publishing and persistence failures are logged,
// never fatal to the run.
func (m *Monitor) RunWith(ctx context.Context, funds []string, budget float64) (*models.BatchReport, error) {
	if !atomic.CompareAndSwapInt32(&m.running, 0, 1) {
		return nil, ErrRunInProgress
	}
	defer atomic.StoreInt32(&m.running, 0)

	universe := m.funds
	if len(funds) > 0 {
		universe = m.intersect(funds)
	}
	if len(universe) == 0 {
		return nil, fmt.Errorf("no funds configured")
	}
	alloc := m.alloc
	if budget > 0 {
		alloc = allocator.New(budget, m.alloc.TopN)
	}

	now := time.Now().UTC()
	offline := m.holidays[util.FormatDate(now)]
	if offline {
		m.log.Info("holiday: evaluating from cache only", logger.String("date", util.FormatDate(now)))
	}

	trendState := m.benchmarkTrend(ctx, offline)
	m.log.Info("batch starting",
		logger.Int("funds", len(universe)), logger.String("trend", trendState.String()),
		logger.Bool("offline", offline))

	results := m.sched.Run(ctx, universe, trendState, offline)
	for i := range results {
		results[i].Held = m.holdings[results[i].FundID]
	}

	report := &models.BatchReport{
		RanAt:       now,
		Trend:       trendState,
		Results:     results,
		Allocations: alloc.Allocate(results),
	}

	m.mu.Lock()
	m.latest = report
	m.mu.Unlock()

	m.fanOut(ctx, report)
	return report, nil
}

// benchmarkTrend evaluates the benchmark fund through the same pipeline and
// classifies its snapshot. No benchmark configured means Unknown.
func (m *Monitor) benchmarkTrend(ctx context.Context, offline bool) models.MarketTrend {
	if m.benchmark == "" {
		return models.TrendUnknown
	}
	bench := m.sched.Run(ctx, []string{m.benchmark}, models.TrendUnknown, offline)
	if len(bench) != 1 || !bench[0].Available() {
		m.log.Warn("benchmark unavailable, trend unknown", logger.String("benchmark", m.benchmark))
		return models.TrendUnknown
	}
	return trend.Classify(bench[0].Snapshot)
}

func (m *Monitor) fanOut(ctx context.Context, report *models.BatchReport) {
	if m.publisher != nil {
		if err := m.publisher.PublishBatch(ctx, report); err != nil {
			m.log.Error("publish batch failed", logger.Error(err))
		}
	}
	if m.history != nil {
		if err := m.history.StoreBatch(ctx, report); err != nil {
			m.log.Error("store batch history failed", logger.Error(err))
		}
	}
	if m.reports != nil {
		if err := m.reports.Set(ctx, latestReportKey, report, m.reportTTL); err != nil {
			m.log.Error("cache report failed", logger.Error(err))
		}
	}
}

// intersect filters requested ids down to the configured universe.
func (m *Monitor) intersect(requested []string) []string {
	known := make(map[string]bool, len(m.funds))
	for _, id := range m.funds {
		known[id] = true
	}
	var out []string
	for _, id := range requested {
		if known[id] {
			out = append(out, id)
		}
	}
	return out
}

// Latest returns the most recent report, nil before the first run.
func (m *Monitor) Latest() *models.BatchReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// LoadHolidays reads no-trading dates from a file, one ISO date per line.
// Blank lines and #-comments are ignored. A missing file is not an error.
func LoadHolidays(path string) (map[string]bool, error) {
	out := map[string]bool{}
	if path == "" {
		return out, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("open holidays file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d, ok := util.ParseDate(line)
		if !ok {
			return nil, fmt.Errorf("holidays file: bad date %q", line)
		}
		out[util.FormatDate(d)] = true
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read holidays file: %w", err)
	}
	return out, nil
}
