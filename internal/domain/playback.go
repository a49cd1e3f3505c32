package domain

// PlaybackState is the transient position of a player. It is never persisted.
type PlaybackState struct {
	CurrentStepIndex int
	ElapsedInStep    int
	IsRunning        bool
	Completed        bool
	TotalElapsed     int
	TotalDuration    int
	StepCount        int
	Playable         bool
}

// Completion is emitted once when the last step of a plan finishes.
type Completion struct {
	SessionName string
	Total       int // seconds, sum of all step durations
}
