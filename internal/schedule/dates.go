package schedule

import "time"

// DateOnly truncates a timestamp to its calendar date at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats a date for set membership checks.
func DateKey(t time.Time) string {
	return DateOnly(t).Format(time.DateOnly)
}
