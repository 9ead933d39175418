package navapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"NavPulse/internal/domain/models"
	"NavPulse/pkg/util"
)

func noSleep(context.Context, time.Duration) error { return nil }

func fastRetry(attempts int) models.RetryPolicy {
	return models.RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func testClient(baseURL string, opts ...Option) *Client {
	base := []Option{WithSleep(noSleep), WithRetry(fastRetry(3)), WithRateLimit(100, 100)}
	return New(baseURL, append(base, opts...)...)
}

func pageJSON(page, pages int, rows ...string) string {
	items := ""
	for i, r := range rows {
		if i > 0 {
			items += ","
		}
		items += r
	}
	return fmt.Sprintf(`{"page":%d,"pages":%d,"items":[%s]}`, page, pages, items)
}

func row(date string, value float64) string {
	return fmt.Sprintf(`{"date":%q,"value":%v}`, date, value)
}

func TestFetchSortsAcrossPages(t *testing.T) {
	// rows deliberately out of order inside each page
	pages := map[string]string{
		"1": pageJSON(1, 2, row("2026-08-12", 1.12), row("2026-08-10", 1.10)),
		"2": pageJSON(2, 2, row("2026-08-08", 1.08), row("2026-08-09", 1.09)),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pages[r.URL.Query().Get("page")])
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Fetch(context.Background(), "F001", time.Time{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 points, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Date.Before(got[i].Date) {
			t.Fatalf("points not strictly ascending at %d", i)
		}
	}
	if got[0].Value != 1.08 || got[3].Value != 1.12 {
		t.Fatalf("unexpected order: first %v last %v", got[0].Value, got[3].Value)
	}
}

func TestWatermarkStopsPagination(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, pageJSON(1, 3, row("2026-08-12", 1.12), row("2026-08-11", 1.11)))
		case "2":
			// entirely at or before the watermark
			fmt.Fprint(w, pageJSON(2, 3, row("2026-08-10", 1.10), row("2026-08-09", 1.09)))
		default:
			t.Error("page past the watermark boundary was requested")
		}
	}))
	defer srv.Close()

	wm, _ := util.ParseDate("2026-08-10")
	got, err := testClient(srv.URL).Fetch(context.Background(), "F001", wm)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 fresh points, got %d", len(got))
	}
	for _, p := range got {
		if !p.Date.After(wm) {
			t.Fatalf("stale point %v leaked past the watermark", p.Date)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("expected pagination to stop after 2 pages, saw %d requests", n)
	}
}

func TestTransientFailureRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, pageJSON(1, 1, row("2026-08-12", 1.12)))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Fetch(context.Background(), "F001", time.Time{})
	if err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if len(got) != 1 || atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected success on attempt 3, points=%d hits=%d", len(got), hits)
	}
}

func TestRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "F001", time.Time{})
	var terr *models.TransientFetchError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransientFetchError, got %v", err)
	}
	if terr.FundID != "F001" {
		t.Fatalf("error carries wrong fund id %q", terr.FundID)
	}
}

func TestMalformedPageSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, pageJSON(1, 3, row("2026-08-10", 1.10)))
		case "2":
			fmt.Fprint(w, `{"page":2,"pages":3,"items":[{`) // truncated
		case "3":
			fmt.Fprint(w, pageJSON(3, 3, row("2026-08-12", 1.12)))
		}
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Fetch(context.Background(), "F001", time.Time{})
	if err != nil {
		t.Fatalf("a malformed page must not abort the fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected pages 1 and 3 to survive, got %d points", len(got))
	}
}

func TestUnparseableRowsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageJSON(1, 1, row("not-a-date", 9.99), row("2026-08-12", 1.12)))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Fetch(context.Background(), "F001", time.Time{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].Value != 1.12 {
		t.Fatalf("expected only the valid row, got %+v", got)
	}
}
