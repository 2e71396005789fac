// Package iso8601 pins the timestamp format used across Wardkeep's audit
// records and log entries: ISO8601 / RFC3339 with millisecond precision,
// always UTC. Keeping the format in one place guarantees that records
// written by different components sort and compare consistently.
package iso8601

import "time"

// Layout is the canonical timestamp layout (UTC, millisecond precision).
const Layout = "2006-01-02T15:04:05.000Z"

// Format renders t in the canonical layout, converting to UTC first.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse parses a timestamp produced by Format.
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}
