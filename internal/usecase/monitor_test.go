package usecase

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"NavPulse/internal/allocator"
	"NavPulse/internal/domain/models"
	"NavPulse/pkg/util"
)

type fakePublisher struct {
	mu  sync.Mutex
	got *models.BatchReport
}

func (p *fakePublisher) PublishBatch(_ context.Context, report *models.BatchReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = report
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func TestMonitorEndToEnd(t *testing.T) {
	store := newMemStore()
	store.m["BM"] = benchSeries()
	store.m["F1"] = dropSeries()
	store.m["F2"] = linSeries(40, 1.0, 0.01)
	src := &fakeSource{}
	pub := &fakePublisher{}

	sched := newTestScheduler(store, src)
	mon := NewMonitor(sched, allocator.New(10000, 3), []string{"F1", "F2"},
		WithBenchmark("BM"),
		WithHoldings([]string{"F2"}),
		WithPublisher(pub),
	)

	report, err := mon.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Trend != models.TrendStrong {
		t.Fatalf("benchmark should classify strong, got %v", report.Trend)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}

	byID := map[string]models.Result{}
	for _, r := range report.Results {
		byID[r.FundID] = r
	}
	if sig := byID["F1"].Signal; sig.Action != models.StrongBuy || !sig.Amplified {
		t.Fatalf("recent drop in a strong market should be amplified strong_buy, got %+v", sig)
	}
	if !byID["F2"].Held || byID["F1"].Held {
		t.Fatalf("holdings flag misapplied: %+v", byID)
	}

	if len(report.Allocations) == 0 {
		t.Fatal("expected allocations for positively scored funds")
	}
	if report.Allocations[0].FundID != "F1" {
		t.Fatalf("strongest signal should rank first, got %s", report.Allocations[0].FundID)
	}

	if mon.Latest() != report {
		t.Fatal("Latest should return the report just produced")
	}
	if pub.got != report {
		t.Fatal("report was not handed to the publisher")
	}
}

func TestMonitorHolidaySkipsFetch(t *testing.T) {
	store := newMemStore()
	store.m["F1"] = dropSeries()
	src := &fakeSource{fail: map[string]bool{"F1": true}}

	today := util.FormatDate(time.Now().UTC())
	sched := newTestScheduler(store, src)
	mon := NewMonitor(sched, allocator.New(10000, 3), []string{"F1"},
		WithHolidays(map[string]bool{today: true}),
	)

	report, err := mon.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("holiday run must not touch the upstream, saw %d calls", src.calls)
	}
	if !report.Results[0].Available() {
		t.Fatalf("cached series should still classify on a holiday, got %+v", report.Results[0])
	}
}

func TestMonitorUnknownTrendWithoutBenchmarkData(t *testing.T) {
	store := newMemStore()
	store.m["F1"] = dropSeries()
	src := &fakeSource{fail: map[string]bool{"BM": true}}

	sched := newTestScheduler(store, src)
	mon := NewMonitor(sched, allocator.New(10000, 3), []string{"F1"}, WithBenchmark("BM"))

	report, err := mon.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Trend != models.TrendUnknown {
		t.Fatalf("unreachable benchmark must yield unknown trend, got %v", report.Trend)
	}
	// neutral-equivalent classification still happens for the funds
	if sig := report.Results[0].Signal; sig.Action != models.WeakBuy {
		t.Fatalf("expected weak_buy without trend escalation, got %+v", sig)
	}
}

func TestLoadHolidays(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holidays.txt")
	content := "# national holidays\n2026-01-01\n\n2026-12-25\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadHolidays(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || !got["2026-01-01"] || !got["2026-12-25"] {
		t.Fatalf("unexpected holiday set: %v", got)
	}

	missing, err := LoadHolidays(filepath.Join(dir, "absent.txt"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("missing file should be an empty set, got %v / %v", missing, err)
	}
}
