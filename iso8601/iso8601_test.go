package iso8601

import (
	"testing"
	"time"
)

func TestFormatUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, loc)

	got := Format(ts)
	want := "2026-03-14T13:09:26.535Z"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 678_000_000, time.UTC)

	parsed, err := Parse(Format(ts))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !parsed.Equal(ts) {
		t.Errorf("round trip changed time: got %v, want %v", parsed, ts)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-a-timestamp"); err == nil {
		t.Error("Parse should fail on invalid input")
	}
}
