package view

import (
	"fmt"
	"time"
)

// FormatClock renders seconds as MM:SS. Minutes are not wrapped into hours.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatTotalTime renders a minute count as "N min", "N hr" or "N hr M min".
func FormatTotalTime(totalMinutes int) string {
	if totalMinutes <= 0 {
		return "0 minutes"
	}
	hours, minutes := totalMinutes/60, totalMinutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%d min", minutes)
	case minutes == 0:
		return fmt.Sprintf("%d hr", hours)
	default:
		return fmt.Sprintf("%d hr %d min", hours, minutes)
	}
}

// FormatMinutes renders whole elapsed minutes, e.g. "1 minute" or "20 minutes".
func FormatMinutes(seconds int) string {
	mins := seconds / 60
	if mins == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", mins)
}

// FormatShortDuration renders whole minutes as "N min".
func FormatShortDuration(seconds int) string {
	return fmt.Sprintf("%d min", seconds/60)
}

// FormatCompletedAt renders a stored timestamp in loc, or the server's zone
// when loc is nil. Unparseable values are shown as stored.
func FormatCompletedAt(value string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("Mon, Jan 2, 2006 at 3:04 PM")
}
