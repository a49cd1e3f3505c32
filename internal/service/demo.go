package service

import (
	"fmt"
	"time"

	"github.com/msomdec/praylude/internal/domain"
)

type demoEntry struct {
	daysAgo      int
	hour, minute int
	duration     int
	name         string
	notes        string
}

var demoEntries = []demoEntry{
	{0, 7, 0, 1200, StandardSessionName, "Felt peaceful and centered this morning"},
	{1, 7, 15, 1260, StandardSessionName, ""},
	{2, 6, 45, 900, StandardSessionName, ""},
	{3, 7, 30, 1500, "Custom Session - Deep Prayer", "Focused on gratitude and thanksgiving"},
	{5, 18, 0, 1080, StandardSessionName, ""},
	{6, 7, 0, 1200, StandardSessionName, ""},
	{7, 7, 15, 1320, StandardSessionName, ""},
	{10, 21, 0, 600, "Quick Evening Prayer", "Short session before bed"},
	{14, 13, 0, 1800, "Extended Meditation", "Longest session yet"},
	{20, 7, 0, 1200, StandardSessionName, ""},
}

// GenerateDemoHistory returns ten sessions spread over the twenty days before
// now, in now's location. The newest three fall on consecutive days ending today.
func GenerateDemoHistory(now time.Time) []domain.CompletedSession {
	records := make([]domain.CompletedSession, len(demoEntries))
	for i, e := range demoEntries {
		day := now.AddDate(0, 0, -e.daysAgo)
		at := time.Date(day.Year(), day.Month(), day.Day(), e.hour, e.minute, 0, 0, now.Location())
		records[i] = domain.CompletedSession{
			ID:          fmt.Sprintf("session-%d", i+1),
			CompletedAt: at.UTC().Format(timestampLayout),
			Duration:    e.duration,
			SessionName: e.name,
			Notes:       e.notes,
		}
	}
	return records
}
