package ledger

import (
	"fmt"
	"strings"
	"time"
)

type TimeFrame string

const (
	TimeFrameDay   TimeFrame = "day"
	TimeFrameWeek  TimeFrame = "week"
	TimeFrameMonth TimeFrame = "month"
	TimeFrameYear  TimeFrame = "year"
	TimeFrameAll   TimeFrame = "all"
)

// DateRange is inclusive on both ends. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// ParseTimeFrame accepts the API spelling; an empty value means all time.
func ParseTimeFrame(value string) (TimeFrame, error) {
	switch tf := TimeFrame(strings.ToLower(strings.TrimSpace(value))); tf {
	case "":
		return TimeFrameAll, nil
	case TimeFrameDay, TimeFrameWeek, TimeFrameMonth, TimeFrameYear, TimeFrameAll:
		return tf, nil
	default:
		return "", fmt.Errorf("unknown time frame %q", value)
	}
}

// PeriodRange returns the bucket for tf relative to now, in now's location.
// The week is the rolling seven days ending today.
func PeriodRange(tf TimeFrame, now time.Time) DateRange {
	today := startOfDay(now)

	switch tf {
	case TimeFrameDay:
		return DateRange{Start: today, End: endOfDay(today)}
	case TimeFrameWeek:
		return DateRange{Start: today.AddDate(0, 0, -6), End: endOfDay(today)}
	case TimeFrameMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return DateRange{Start: first, End: endOfDay(first.AddDate(0, 1, -1))}
	case TimeFrameYear:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return DateRange{Start: first, End: endOfDay(time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location()))}
	default:
		return DateRange{}
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
