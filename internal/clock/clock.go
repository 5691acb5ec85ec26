// Package clock formats timestamps whose lexical order matches their
// chronological order, so history and cursor ordering can rely on plain
// string comparison.
package clock

import "time"

const layout = "2006-01-02T15:04:05.000Z"

// Now returns the current UTC time formatted with millisecond precision.
func Now() string {
	return time.Now().UTC().Format(layout)
}

// Format renders t the same way Now renders the current time.
func Format(t time.Time) string {
	return t.UTC().Format(layout)
}
