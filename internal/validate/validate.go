// Package validate holds the input checks shared by the HTTP layer and the domain service.
package validate

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted on input (yyyy-mm-dd).
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date as midnight UTC. Impossible dates such
// as 2021-02-30 are rejected.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if len(value) != len(DateLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseNumber parses value as a finite float64.
func ParseNumber(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
