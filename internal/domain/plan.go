package domain

import "fmt"

// MaxPlanSteps is the number of sections a plan can cover.
const MaxPlanSteps = 6

// Step is one section-technique-duration triple of a SessionPlan.
// A nil TechniqueID marks a skipped section.
type Step struct {
	SectionID   string
	TechniqueID *string
	Duration    int // seconds
}

// Skipped reports whether the step has no technique.
func (s Step) Skipped() bool {
	return s.TechniqueID == nil
}

// EffectiveDuration is the number of seconds the step is played for.
// Skipped steps never consume time.
func (s Step) EffectiveDuration() int {
	if s.Skipped() || s.Duration < 0 {
		return 0
	}
	return s.Duration
}

// SessionPlan is an ordered list of steps played back to back.
type SessionPlan struct {
	Name  string
	Steps []Step
}

// TotalDuration sums the effective duration of every step.
func (p SessionPlan) TotalDuration() int {
	total := 0
	for _, s := range p.Steps {
		total += s.EffectiveDuration()
	}
	return total
}

// Playable reports whether the plan has at least one step that takes time.
func (p SessionPlan) Playable() bool {
	for _, s := range p.Steps {
		if !s.Skipped() && s.EffectiveDuration() > 0 {
			return true
		}
	}
	return false
}

// Validate checks structural constraints of the plan.
func (p SessionPlan) Validate() error {
	if len(p.Steps) > MaxPlanSteps {
		return fmt.Errorf("%w: plan has %d steps, at most %d allowed", ErrTooManySteps, len(p.Steps), MaxPlanSteps)
	}
	for i, s := range p.Steps {
		if s.Duration < 0 {
			return fmt.Errorf("%w: step %d has negative duration", ErrInvalidInput, i)
		}
	}
	return nil
}
