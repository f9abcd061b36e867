package common

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseTime accepts an RFC 3339 timestamp or a plain calendar date.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateLayout, value)
}

// ParseRangeEnd treats a plain calendar date as the whole of that day.
func ParseRangeEnd(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return parsed.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return ParseTime(value)
}
