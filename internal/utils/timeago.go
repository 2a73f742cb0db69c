package utils

import (
	"fmt"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
	secondsPerWeek   = 604800
	secondsPerMonth  = 2592000  // 30 days
	secondsPerYear   = 31536000 // 365 days
)

// TimeAgo renders the distance between t and now as "N units ago".
// Months and years are fixed 30 and 365 day spans.
func TimeAgo(t, now time.Time) string {
	seconds := int64(now.Sub(t) / time.Second)

	switch {
	case seconds < secondsPerMinute:
		return "Just now"
	case seconds < secondsPerHour:
		return plural(seconds/secondsPerMinute, "minute")
	case seconds < secondsPerDay:
		return plural(seconds/secondsPerHour, "hour")
	case seconds < secondsPerWeek:
		return plural(seconds/secondsPerDay, "day")
	case seconds < secondsPerMonth:
		return plural(seconds/secondsPerWeek, "week")
	case seconds < secondsPerYear:
		return plural(seconds/secondsPerMonth, "month")
	default:
		return plural(seconds/secondsPerYear, "year")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
