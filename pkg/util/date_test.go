package util

import (
	"testing"
	"time"
)

func TestParseDateISO(t *testing.T) {
	got, ok := ParseDate("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateRFC3339(t *testing.T) {
	got, ok := ParseDate("2024-10-10T15:04:05Z")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected midnight, got %v", got)
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, ok := ParseDate("10/10/2024"); ok {
		t.Fatalf("expected parse failure")
	}
	if _, ok := ParseDate(""); ok {
		t.Fatalf("expected parse failure on empty")
	}
}

func TestSameDate(t *testing.T) {
	a := time.Date(2024, 10, 10, 1, 0, 0, 0, time.UTC)
	b := time.Date(2024, 10, 10, 23, 59, 0, 0, time.UTC)
	if !SameDate(a, b) {
		t.Fatalf("expected same date")
	}
	if SameDate(a, b.Add(time.Minute)) {
		t.Fatalf("expected different dates")
	}
}
