package service

import (
	"github.com/msomdec/praylude/internal/domain"
)

// Player is the playback state machine for one SessionPlan. It advances one
// second per Tick while running. Player is not safe for concurrent use; the
// caller serialises ticks.
type Player struct {
	plan  domain.SessionPlan
	total int

	index     int
	elapsed   int
	running   bool
	completed bool
}

// NewPlayer creates a stopped player positioned at the first step.
func NewPlayer(plan domain.SessionPlan) *Player {
	return &Player{plan: plan, total: plan.TotalDuration()}
}

// Plan returns the plan being played.
func (p *Player) Plan() domain.SessionPlan {
	return p.plan
}

// Start begins or resumes playback. A plan with nothing to play is refused.
func (p *Player) Start() error {
	if !p.plan.Playable() {
		return domain.ErrNoPlayableSteps
	}
	if p.completed {
		// Starting again after completion replays from the top.
		p.index, p.elapsed, p.completed = 0, 0, false
	}
	p.running = true
	return nil
}

// Pause stops the clock without losing position.
func (p *Player) Pause() {
	p.running = false
}

// Toggle flips between running and paused.
func (p *Player) Toggle() error {
	if p.running {
		p.Pause()
		return nil
	}
	return p.Start()
}

// Reset returns to the first step and clears any completion.
func (p *Player) Reset() {
	p.running = false
	p.index = 0
	p.elapsed = 0
	p.completed = false
}

// Tick advances playback by one second. It returns a Completion exactly once,
// on the tick that finishes the last step, and nil otherwise.
func (p *Player) Tick() *domain.Completion {
	if !p.running {
		return nil
	}

	// A cursor resting on a zero-length step never spends a second there.
	if p.skipEmpty() {
		return p.complete()
	}

	p.elapsed++
	if p.elapsed < p.currentDuration() {
		return nil
	}

	if p.advance() {
		return p.complete()
	}
	return nil
}

// State reports the current position.
func (p *Player) State() domain.PlaybackState {
	elapsedBefore := 0
	for i := 0; i < p.index && i < len(p.plan.Steps); i++ {
		elapsedBefore += p.plan.Steps[i].EffectiveDuration()
	}
	return domain.PlaybackState{
		CurrentStepIndex: p.index,
		ElapsedInStep:    p.elapsed,
		IsRunning:        p.running,
		Completed:        p.completed,
		TotalElapsed:     elapsedBefore + p.elapsed,
		TotalDuration:    p.total,
		StepCount:        len(p.plan.Steps),
		Playable:         p.plan.Playable(),
	}
}

func (p *Player) currentDuration() int {
	if p.index >= len(p.plan.Steps) {
		return 0
	}
	return p.plan.Steps[p.index].EffectiveDuration()
}

// advance moves past the finished step and any zero-length steps after it.
// It reports whether the plan has run out of steps.
func (p *Player) advance() bool {
	if p.index >= len(p.plan.Steps)-1 {
		return true
	}
	p.index++
	p.elapsed = 0
	return p.skipEmpty()
}

// skipEmpty passes through zero-length steps at the cursor. It reports
// whether the plan has run out of steps. The index never moves past the
// last step.
func (p *Player) skipEmpty() bool {
	for p.currentDuration() == 0 {
		if p.index >= len(p.plan.Steps)-1 {
			return true
		}
		p.index++
		p.elapsed = 0
	}
	return false
}

func (p *Player) complete() *domain.Completion {
	p.running = false
	p.completed = true
	p.elapsed = 0
	return &domain.Completion{SessionName: p.plan.Name, Total: p.total}
}
