package domain

import "context"

// CompletedSession records one finished meditation. It is immutable once written.
type CompletedSession struct {
	ID          string `json:"id"`
	CompletedAt string `json:"completedAt"` // RFC 3339
	Duration    int    `json:"duration"`    // seconds
	SessionName string `json:"sessionName"`
	Notes       string `json:"notes,omitempty"`
}

// Stats is the aggregate view derived from every CompletedSession of a device.
type Stats struct {
	TotalSessions   int    `json:"totalSessions"`
	TotalMinutes    int    `json:"totalMinutes"`
	CurrentStreak   int    `json:"currentStreak"`
	LastSessionDate string `json:"lastSessionDate"`
}

// TimeOfDay buckets completion times by local hour.
type TimeOfDay string

const (
	TimeOfDayNone      TimeOfDay = ""
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayEvening   TimeOfDay = "evening"
	TimeOfDayNight     TimeOfDay = "night"
)

// Label returns the display form, "N/A" when there is no data.
func (t TimeOfDay) Label() string {
	switch t {
	case TimeOfDayMorning:
		return "Morning"
	case TimeOfDayAfternoon:
		return "Afternoon"
	case TimeOfDayEvening:
		return "Evening"
	case TimeOfDayNight:
		return "Night"
	default:
		return "N/A"
	}
}

// CompletionRecorder receives finished sessions from the playback engine.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, deviceID, sessionName string, durationSeconds int, notes string) CompletedSession
}
