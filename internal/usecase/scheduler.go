package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"NavPulse/internal/domain/models"
	drepo "NavPulse/internal/domain/repository"
	"NavPulse/internal/indicator"
	"NavPulse/internal/signal"
	"NavPulse/pkg/logger"
)

// Scheduler evaluates funds under a bounded worker pool. Each fund's
// pipeline is load, fetch past the watermark, merge, save, compute, classify.
// Failures are isolated per fund: every input id yields exactly one Result.
type Scheduler struct {
	store        drepo.SeriesStore
	source       drepo.NavSource
	engine       *indicator.Engine
	metrics      drepo.Metrics
	log          *logger.Logger
	pool         int
	growthWindow int // days
	progress     func(models.ProgressEvent)
}

// SchedulerOption configures the Scheduler.
type SchedulerOption func(*Scheduler)

// NewScheduler creates a Scheduler over the given store and source.
func NewScheduler(store drepo.SeriesStore, source drepo.NavSource, engine *indicator.Engine, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		store:        store,
		source:       source,
		engine:       engine,
		log:          logger.Nop(),
		pool:         5,
		growthWindow: 30,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pool <= 0 {
		s.pool = 5
	}
	return s
}

// WithPoolSize sets the number of concurrent fund evaluations.
func WithPoolSize(n int) SchedulerOption {
	return func(s *Scheduler) { s.pool = n }
}

// WithGrowthWindow sets the lookback in days for the growth reading.
func WithGrowthWindow(days int) SchedulerOption {
	return func(s *Scheduler) {
		if days > 0 {
			s.growthWindow = days
		}
	}
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(l *logger.Logger) SchedulerOption {
	return func(s *Scheduler) { s.log = l }
}

// WithSchedulerMetrics sets the metrics recorder.
func WithSchedulerMetrics(m drepo.Metrics) SchedulerOption {
	return func(s *Scheduler) { s.metrics = m }
}

// WithProgress sets a callback invoked after every completed fund.
func WithProgress(fn func(models.ProgressEvent)) SchedulerOption {
	return func(s *Scheduler) { s.progress = fn }
}

// Run evaluates all funds with at most pool-size workers and returns one
// Result per fund id, sorted by fund id. When offline is true the fetch
// step is skipped and signals come from the cache alone.
func (s *Scheduler) Run(ctx context.Context, fundIDs []string, trendState models.MarketTrend, offline bool) []models.Result {
	jobs := make(chan string)
	out := make(chan models.Result, len(fundIDs))

	var wg sync.WaitGroup
	for i := 0; i < s.pool; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				out <- s.evaluate(ctx, id, trendState, offline)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range fundIDs {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]models.Result, 0, len(fundIDs))
	for r := range out {
		results = append(results, r)
		if s.progress != nil {
			s.progress(models.ProgressEvent{
				FundID:    r.FundID,
				Action:    r.Signal.Label(),
				Completed: len(results),
				Total:     len(fundIDs),
			})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].FundID < results[j].FundID })
	return results
}

func (s *Scheduler) evaluate(ctx context.Context, fundID string, trendState models.MarketTrend, offline bool) models.Result {
	start := time.Now()
	res := models.Result{
		FundID: fundID,
		Trend:  trendState,
		Signal: models.Signal{Action: models.Unavailable},
	}

	series, err := s.store.Load(fundID)
	if err != nil {
		s.log.Error("cache load failed", logger.String("fund", fundID), logger.Error(err))
		s.recordError("cache_load")
		res.Failure = err.Error()
		return res
	}

	if !offline {
		watermark, _ := series.Watermark()
		points, ferr := s.source.Fetch(ctx, fundID, watermark)
		switch {
		case ferr != nil && len(series) == 0:
			s.log.Error("fetch failed with no cache to fall back on",
				logger.String("fund", fundID), logger.Error(ferr))
			s.recordError("fetch")
			res.Failure = ferr.Error()
			return res
		case ferr != nil:
			// stale but usable: classify from the cached series
			s.log.Warn("fetch failed, serving cached series",
				logger.String("fund", fundID), logger.Int("cached_points", len(series)), logger.Error(ferr))
			s.recordError("fetch")
		case len(points) > 0:
			series = series.Merge(points)
			if serr := s.store.Save(fundID, series); serr != nil {
				s.log.Error("cache save failed", logger.String("fund", fundID), logger.Error(serr))
				s.recordError("cache_save")
				res.Failure = serr.Error()
				return res
			}
		}
	}

	if len(series) == 0 {
		res.Failure = "no data available"
		return res
	}

	snap := s.engine.Compute(series)
	sig := signal.Classify(snap, trendState)

	latest, _ := series.Latest()
	res.LatestDate = latest.Date
	res.LatestValue = models.Def(latest.Value)
	res.RSI = snap.RSI
	res.MARatio = snap.MARatio
	res.MACDDiff = snap.MACDDiff
	res.BBUpper = snap.BBUpper
	res.BBLower = snap.BBLower
	res.Growth = series.GrowthSince(latest.Date.AddDate(0, 0, -s.growthWindow))
	res.Signal = sig
	res.Snapshot = snap
	if sig.Action == models.Unavailable {
		res.Failure = "insufficient history"
	}

	if s.metrics != nil {
		s.metrics.RecordLastNav(fundID, latest.Value)
		s.metrics.RecordEvalDuration(fundID, time.Since(start).Seconds())
		s.metrics.RecordSignal(sig.Label())
	}
	return res
}

func (s *Scheduler) recordError(kind string) {
	if s.metrics != nil {
		s.metrics.RecordError(kind)
	}
}
