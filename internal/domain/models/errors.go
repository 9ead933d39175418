package models

import "fmt"

// TransientFetchError marks a retryable upstream failure (network, timeout,
// 5xx). Exhausting retries triggers cache fallback, never a batch abort.
type TransientFetchError struct {
	FundID string
	Err    error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("transient fetch error for fund %s: %v", e.FundID, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// PageParseError marks a single malformed upstream page. The offending page
// is skipped; remaining pages are still consumed.
type PageParseError struct {
	FundID string
	Page   int
	Err    error
}

func (e *PageParseError) Error() string {
	return fmt.Sprintf("parse error for fund %s page %d: %v", e.FundID, e.Page, e.Err)
}

func (e *PageParseError) Unwrap() error { return e.Err }

// CacheIOError marks a failure reading or writing a fund's cache file. The
// fund is reported Unavailable; the batch continues.
type CacheIOError struct {
	FundID string
	Op     string // "load" or "save"
	Err    error
}

func (e *CacheIOError) Error() string {
	return fmt.Sprintf("cache %s error for fund %s: %v", e.Op, e.FundID, e.Err)
}

func (e *CacheIOError) Unwrap() error { return e.Err }
