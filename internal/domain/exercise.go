package domain

import "time"

// OutputDateLayout renders dates as e.g. "Sat Sep 05 2020".
const OutputDateLayout = "Mon Jan 02 2006"

// Exercise is a single logged activity attributed to one athlete.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	Duration    float64
	Date        time.Time
}

// LogEntry is the projection of an Exercise returned by log queries; it omits
// the entry id and the owning user id.
type LogEntry struct {
	Description string
	Duration    float64
	Date        time.Time
}

// DateFilter bounds a log query. From is inclusive, To is exclusive; nil means unbounded.
type DateFilter struct {
	From *time.Time
	To   *time.Time
}

// Matches reports whether t falls within the filter bounds.
func (f DateFilter) Matches(t time.Time) bool {
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.Before(*f.To) {
		return false
	}
	return true
}

// FormatDate renders t in the fixed output pattern.
func FormatDate(t time.Time) string {
	return t.UTC().Format(OutputDateLayout)
}

// StartOfDay truncates t to midnight UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
