package domain

import (
	"math"
	"strconv"
	"strings"

	"example.com/exercisetracker/internal/validate"
)

// LogQuery is the validated form of the optional from/to/limit log parameters.
type LogQuery struct {
	Filter DateFilter
	// Limit caps the number of entries; 0 means unlimited.
	Limit int
	// From and To echo the accepted bounds in the output date pattern. Empty
	// when absent or dropped.
	From string
	To   string
}

// BuildLogQuery translates raw query parameters into a LogQuery. Malformed
// date bounds are treated as absent. When strict is set they are rejected
// with a ValidationError instead.
func BuildLogQuery(from, to, limit string, strict bool) (LogQuery, error) {
	var q LogQuery

	if from = strings.TrimSpace(from); from != "" {
		start, ok := validate.ParseDate(from)
		switch {
		case ok:
			q.Filter.From = &start
			q.From = FormatDate(start)
		case strict:
			return LogQuery{}, invalid("from", MsgInvalidLogDate)
		}
	}

	if to = strings.TrimSpace(to); to != "" {
		day, ok := validate.ParseDate(to)
		switch {
		case ok:
			end := day.AddDate(0, 0, 1)
			q.Filter.To = &end
			q.To = FormatDate(day)
		case strict:
			return LogQuery{}, invalid("to", MsgInvalidLogDate)
		}
	}

	q.Limit = parseLimit(limit)
	return q, nil
}

// parseLimit accepts any finite numeric value, truncating fractions. Anything
// else, including non-positive values, means unlimited.
func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return max(n, 0)
	}
	f, ok := validate.ParseNumber(raw)
	if !ok || f < 1 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
