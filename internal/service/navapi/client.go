// Package navapi implements the NavSource port against the paginated NAV
// JSON endpoint. Pages are fetched oldest-page-number first but no row order
// is assumed inside a page; every page is sorted explicitly before the
// watermark check.
package navapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"NavPulse/internal/domain/models"
	"NavPulse/internal/domain/repository"
	"NavPulse/internal/service/ratelimit"
	httpx "NavPulse/pkg/http"
	"NavPulse/pkg/logger"
	"NavPulse/pkg/util"
)

const limiterKey = "navapi"

// Option configures the Client.
type Option func(*Client)

// Client fetches incremental NAV points for one fund at a time. Safe for
// concurrent use across funds; the token bucket throttles the upstream as a
// whole.
type Client struct {
	http     *httpx.Client
	baseURL  string
	pageSize int
	retry    models.RetryPolicy
	delayMin time.Duration
	delayMax time.Duration
	limiter  *ratelimit.Limiter
	capacity float64
	refill   float64
	log      *logger.Logger
	metrics  repository.Metrics
	sleep    func(context.Context, time.Duration) error
}

// New creates a Client for the given endpoint base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:     httpx.NewClient(),
		baseURL:  baseURL,
		pageSize: 20,
		retry:    models.RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second, Jitter: 0.2},
		delayMin: 500 * time.Millisecond,
		delayMax: 1500 * time.Millisecond,
		limiter:  ratelimit.New(),
		capacity: 5,
		refill:   2,
		log:      logger.Nop(),
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *httpx.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithPageSize sets the page size requested from the upstream.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRetry sets the per-page retry policy.
func WithRetry(p models.RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithPageDelay sets the randomized inter-page delay bounds.
func WithPageDelay(min, max time.Duration) Option {
	return func(c *Client) {
		c.delayMin, c.delayMax = min, max
	}
}

// WithRateLimit sets the upstream token bucket.
func WithRateLimit(capacity, refillPerSec float64) Option {
	return func(c *Client) {
		c.capacity, c.refill = capacity, refillPerSec
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m repository.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithSleep overrides the delay function, for tests.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

type navItem struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type navPage struct {
	Page  int       `json:"page"`
	Pages int       `json:"pages"`
	Items []navItem `json:"items"`
}

// Fetch returns NAV points strictly newer than the watermark, ascending by
// date. A zero watermark fetches everything. Exhausted retries surface a
// *models.TransientFetchError; a malformed page is skipped and the rest of
// the pages are still consumed.
func (c *Client) Fetch(ctx context.Context, fundID string, watermark time.Time) ([]models.NavPoint, error) {
	var out []models.NavPoint
	page := 1
	pages := 0 // unknown until the first parsed page

	for {
		if err := c.waitTurn(ctx); err != nil {
			return nil, &models.TransientFetchError{FundID: fundID, Err: err}
		}

		pg, err := c.fetchPage(ctx, fundID, page)
		if err != nil {
			var perr *models.PageParseError
			if errors.As(err, &perr) {
				c.log.Warn("skipping malformed page",
					logger.String("fund", fundID), logger.Int("page", page), logger.Error(err))
				if c.metrics != nil {
					c.metrics.RecordError("parse_page")
				}
				if pages == 0 || page >= pages {
					break
				}
				page++
				continue
			}
			return nil, err
		}
		if pg.Pages > 0 {
			pages = pg.Pages
		}
		if c.metrics != nil {
			c.metrics.RecordFetchPage(fundID)
		}

		points, minDate := c.parseItems(fundID, page, pg.Items)
		fresh := 0
		for _, p := range points {
			if watermark.IsZero() || p.Date.After(watermark) {
				out = append(out, p)
				fresh++
			}
		}

		// a non-empty page entirely at or before the watermark means the
		// upstream has nothing newer behind it
		if len(points) > 0 && fresh == 0 && !watermark.IsZero() && !minDate.After(watermark) {
			break
		}
		if pages == 0 || page >= pages {
			break
		}
		page++

		if err := c.pagePause(ctx); err != nil {
			return nil, &models.TransientFetchError{FundID: fundID, Err: err}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// fetchPage retrieves one page, retrying transient failures per the policy.
func (c *Client) fetchPage(ctx context.Context, fundID string, page int) (*navPage, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			c.log.Debug("retrying page fetch",
				logger.String("fund", fundID), logger.Int("page", page), logger.Int("attempt", attempt))
			if err := c.sleep(ctx, c.retry.Backoff(attempt-1)); err != nil {
				return nil, &models.TransientFetchError{FundID: fundID, Err: err}
			}
		}

		pg, err := c.doPage(ctx, fundID, page)
		if err == nil {
			return pg, nil
		}
		var perr *models.PageParseError
		if errors.As(err, &perr) {
			return nil, err // malformed payload will not improve on retry
		}
		lastErr = err
	}
	return nil, &models.TransientFetchError{FundID: fundID, Err: lastErr}
}

func (c *Client) doPage(ctx context.Context, fundID string, page int) (*navPage, error) {
	resp, err := c.http.SendRequest(ctx, &httpx.RequestOptions{
		Method: httpx.MethodGet,
		URL:    fmt.Sprintf("%s/funds/%s/nav", c.baseURL, fundID),
		QueryParams: map[string][]string{
			"page": {fmt.Sprintf("%d", page)},
			"size": {fmt.Sprintf("%d", c.pageSize)},
		},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var pg navPage
	if err := json.NewDecoder(resp.Body).Decode(&pg); err != nil {
		return nil, &models.PageParseError{FundID: fundID, Page: page, Err: err}
	}
	return &pg, nil
}

// parseItems converts raw rows, dropping unparseable ones, and returns the
// points sorted ascending plus the earliest date seen on the page.
func (c *Client) parseItems(fundID string, page int, items []navItem) ([]models.NavPoint, time.Time) {
	points := make([]models.NavPoint, 0, len(items))
	var minDate time.Time
	for _, it := range items {
		d, ok := util.ParseDate(it.Date)
		if !ok {
			c.log.Debug("dropping unparseable row",
				logger.String("fund", fundID), logger.Int("page", page), logger.String("date", it.Date))
			continue
		}
		if minDate.IsZero() || d.Before(minDate) {
			minDate = d
		}
		points = append(points, models.NavPoint{Date: d, Value: it.Value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, minDate
}

// waitTurn blocks until the token bucket grants a request.
func (c *Client) waitTurn(ctx context.Context) error {
	for !c.limiter.Allow(limiterKey, c.capacity, c.refill) {
		if err := c.sleep(ctx, 50*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

// pagePause inserts the randomized self-imposed delay between pages.
func (c *Client) pagePause(ctx context.Context) error {
	d := c.delayMin
	if c.delayMax > c.delayMin {
		d += time.Duration(rand.Int63n(int64(c.delayMax - c.delayMin)))
	}
	if d <= 0 {
		return nil
	}
	return c.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
