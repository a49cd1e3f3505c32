package service

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/msomdec/praylude/internal/domain"
)

// dateLayout is the format of Stats.LastSessionDate.
const dateLayout = "2006-01-02"

// completedAt parses a record's timestamp. Malformed timestamps are reported as false.
func completedAt(r domain.CompletedSession) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, r.CompletedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// calendarDay maps t to midnight UTC of its calendar date in loc, so that
// day arithmetic is immune to DST transitions.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeStreak counts consecutive calendar days with at least one session,
// ending today or yesterday in now's location. Records with malformed
// timestamps are ignored.
func ComputeStreak(records []domain.CompletedSession, now time.Time) int {
	loc := now.Location()

	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, r := range records {
		t, ok := completedAt(r)
		if !ok {
			continue
		}
		day := calendarDay(t, loc)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return 0
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })

	today := calendarDay(now, loc)
	yesterday := today.AddDate(0, 0, -1)
	if !days[0].Equal(today) && !days[0].Equal(yesterday) {
		return 0
	}

	streak := 1
	prev := days[0]
	for _, day := range days[1:] {
		if !day.Equal(prev.AddDate(0, 0, -1)) {
			break
		}
		streak++
		prev = day
	}
	return streak
}

var timeOfDayOrder = []domain.TimeOfDay{
	domain.TimeOfDayMorning,
	domain.TimeOfDayAfternoon,
	domain.TimeOfDayEvening,
	domain.TimeOfDayNight,
}

func bucketFor(hour int) domain.TimeOfDay {
	switch {
	case hour >= 5 && hour < 11:
		return domain.TimeOfDayMorning
	case hour >= 11 && hour < 17:
		return domain.TimeOfDayAfternoon
	case hour >= 17 && hour < 21:
		return domain.TimeOfDayEvening
	default:
		return domain.TimeOfDayNight
	}
}

// FavoriteTimeOfDay returns the bucket holding the most sessions by local hour
// in loc. Ties go to the earliest bucket in morning, afternoon, evening, night
// order. It returns TimeOfDayNone when no record has a valid timestamp.
func FavoriteTimeOfDay(records []domain.CompletedSession, loc *time.Location) domain.TimeOfDay {
	counts := make(map[domain.TimeOfDay]int, len(timeOfDayOrder))
	total := 0
	for _, r := range records {
		t, ok := completedAt(r)
		if !ok {
			continue
		}
		counts[bucketFor(t.In(loc).Hour())]++
		total++
	}
	if total == 0 {
		return domain.TimeOfDayNone
	}

	best := domain.TimeOfDayNone
	bestCount := 0
	for _, bucket := range timeOfDayOrder {
		if counts[bucket] > bestCount {
			best, bestCount = bucket, counts[bucket]
		}
	}
	return best
}

// RoundedMinutes converts seconds to whole minutes, rounding halves up.
func RoundedMinutes(seconds int) int {
	return int(math.Round(float64(seconds) / 60))
}

// BuildStats derives the aggregate view from the full record set.
func BuildStats(records []domain.CompletedSession, now time.Time) domain.Stats {
	stats := domain.Stats{
		TotalSessions: len(records),
		CurrentStreak: ComputeStreak(records, now),
	}

	var latest time.Time
	for _, r := range records {
		stats.TotalMinutes += RoundedMinutes(r.Duration)
		if t, ok := completedAt(r); ok && t.After(latest) {
			latest = t
		}
	}
	if !latest.IsZero() {
		stats.LastSessionDate = latest.In(now.Location()).Format(dateLayout)
	}
	return stats
}

// MostRecent returns up to limit records, newest first. A limit of zero or
// less returns them all.
func MostRecent(records []domain.CompletedSession, limit int) []domain.CompletedSession {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b domain.CompletedSession) int {
		ta, _ := completedAt(a)
		tb, _ := completedAt(b)
		return cmp.Compare(tb.UnixNano(), ta.UnixNano())
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
