package view

import (
	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
)

// PlayerView is a loaded plan resolved against the catalog, with its
// current playback position.
type PlayerView struct {
	Name  string
	Steps []service.PlanStep
	State domain.PlaybackState
}

func (p PlayerView) current() (service.PlanStep, bool) {
	i := p.State.CurrentStepIndex
	if i < 0 || i >= len(p.Steps) {
		return service.PlanStep{}, false
	}
	return p.Steps[i], true
}

// stepClass marks skipped sections and the one now playing.
func (p PlayerView) stepClass(i int) string {
	switch {
	case p.Steps[i].Technique == nil:
		return "skipped"
	case i == p.State.CurrentStepIndex && !p.State.Completed:
		return "current"
	}
	return ""
}

func (p PlayerView) percent() int {
	if p.State.TotalDuration == 0 {
		return 0
	}
	if p.State.Completed {
		return 100
	}
	return p.State.TotalElapsed * 100 / p.State.TotalDuration
}
