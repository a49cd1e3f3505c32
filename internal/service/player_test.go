package service

import (
	"errors"
	"testing"

	"github.com/msomdec/praylude/internal/domain"
)

func technique(id string) *string { return &id }

// planOf builds a plan with one played step per duration.
func planOf(durations ...int) domain.SessionPlan {
	plan := domain.SessionPlan{Name: "Test Session"}
	for i, d := range durations {
		plan.Steps = append(plan.Steps, domain.Step{
			SectionID:   "section-" + string(rune('a'+i)),
			TechniqueID: technique("tech-" + string(rune('a'+i))),
			Duration:    d,
		})
	}
	return plan
}

// runTicks ticks n times and returns every completion observed.
func runTicks(p *Player, n int) []*domain.Completion {
	var completions []*domain.Completion
	for range n {
		if c := p.Tick(); c != nil {
			completions = append(completions, c)
		}
	}
	return completions
}

func TestPlayer_CompletesAfterTotalTicks(t *testing.T) {
	tests := []struct {
		name      string
		durations []int
	}{
		{"single step", []int{3}},
		{"three steps", []int{2, 1, 4}},
		{"zero first", []int{0, 2, 2}},
		{"zero middle", []int{2, 0, 2}},
		{"zero last", []int{2, 2, 0}},
		{"several zeros", []int{0, 1, 0, 0, 2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := planOf(tt.durations...)
			total := plan.TotalDuration()
			p := NewPlayer(plan)
			if err := p.Start(); err != nil {
				t.Fatalf("Start: %v", err)
			}

			if got := runTicks(p, total-1); len(got) != 0 {
				t.Fatalf("completed early after %d ticks", total-1)
			}

			c := p.Tick()
			if c == nil {
				t.Fatalf("expected completion on tick %d", total)
			}
			if c.Total != total {
				t.Fatalf("expected total %d, got %d", total, c.Total)
			}
			if c.SessionName != "Test Session" {
				t.Fatalf("expected session name, got %q", c.SessionName)
			}

			// Nothing more fires once finished.
			if got := runTicks(p, 5); len(got) != 0 {
				t.Fatalf("expected no further completions, got %d", len(got))
			}

			state := p.State()
			if state.IsRunning || !state.Completed || state.ElapsedInStep != 0 {
				t.Fatalf("unexpected final state: %+v", state)
			}
		})
	}
}

func TestPlayer_AdvancesBetweenSteps(t *testing.T) {
	p := NewPlayer(planOf(2, 3))
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	p.Tick()
	if s := p.State(); s.CurrentStepIndex != 0 || s.ElapsedInStep != 1 {
		t.Fatalf("after 1 tick: expected step 0 elapsed 1, got %+v", s)
	}

	p.Tick()
	if s := p.State(); s.CurrentStepIndex != 1 || s.ElapsedInStep != 0 {
		t.Fatalf("after 2 ticks: expected step 1 elapsed 0, got %+v", s)
	}
	if s := p.State(); s.TotalElapsed != 2 || s.TotalDuration != 5 {
		t.Fatalf("expected total 2/5, got %d/%d", s.TotalElapsed, s.TotalDuration)
	}
}

func TestPlayer_ZeroLengthStepPassedOnSameTick(t *testing.T) {
	p := NewPlayer(planOf(1, 0, 0, 2))
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	p.Tick()
	if s := p.State(); s.CurrentStepIndex != 3 || s.ElapsedInStep != 0 {
		t.Fatalf("expected to land on step 3 after one tick, got %+v", s)
	}
}

func TestPlayer_SkippedSectionsContributeNothing(t *testing.T) {
	plan := planOf(2, 5, 2)
	plan.Steps[1].TechniqueID = nil // skipped, its duration is ignored

	if got := plan.TotalDuration(); got != 4 {
		t.Fatalf("expected total 4, got %d", got)
	}

	p := NewPlayer(plan)
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	completions := runTicks(p, 4)
	if len(completions) != 1 || completions[0].Total != 4 {
		t.Fatalf("expected one completion with total 4, got %+v", completions)
	}
}

func TestPlayer_StartRefusedWithoutPlayableSteps(t *testing.T) {
	plan := domain.SessionPlan{Steps: []domain.Step{
		{SectionID: "a", TechniqueID: nil, Duration: 60},
		{SectionID: "b", TechniqueID: nil},
	}}
	p := NewPlayer(plan)

	if err := p.Start(); !errors.Is(err, domain.ErrNoPlayableSteps) {
		t.Fatalf("expected ErrNoPlayableSteps, got %v", err)
	}
	if p.State().IsRunning {
		t.Fatal("player should not be running")
	}
	if c := p.Tick(); c != nil {
		t.Fatal("tick on a stopped player should not complete")
	}

	empty := NewPlayer(domain.SessionPlan{})
	if err := empty.Toggle(); !errors.Is(err, domain.ErrNoPlayableSteps) {
		t.Fatalf("expected ErrNoPlayableSteps for empty plan, got %v", err)
	}
}

func TestPlayer_PauseStopsTheClock(t *testing.T) {
	p := NewPlayer(planOf(5))
	p.Start()
	p.Tick()
	p.Pause()

	runTicks(p, 3)
	if s := p.State(); s.ElapsedInStep != 1 || s.IsRunning {
		t.Fatalf("expected paused at 1s, got %+v", s)
	}

	if err := p.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	p.Tick()
	if s := p.State(); s.ElapsedInStep != 2 || !s.IsRunning {
		t.Fatalf("expected running at 2s, got %+v", s)
	}
}

func TestPlayer_ResetMidSession(t *testing.T) {
	p := NewPlayer(planOf(2, 2))
	p.Start()
	runTicks(p, 3)

	p.Reset()
	s := p.State()
	if s.CurrentStepIndex != 0 || s.ElapsedInStep != 0 || s.IsRunning || s.Completed {
		t.Fatalf("expected pristine state after reset, got %+v", s)
	}
	if got := runTicks(p, 10); len(got) != 0 {
		t.Fatal("reset must not lead to a completion")
	}
}

func TestPlayer_ResetClearsCompletion(t *testing.T) {
	p := NewPlayer(planOf(1))
	p.Start()
	if c := p.Tick(); c == nil {
		t.Fatal("expected completion")
	}

	p.Reset()
	if p.State().Completed {
		t.Fatal("reset should clear the completion flag")
	}
}

func TestPlayer_StartAfterCompletionReplays(t *testing.T) {
	p := NewPlayer(planOf(1, 1))
	p.Start()
	runTicks(p, 2)

	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s := p.State()
	if s.Completed || s.CurrentStepIndex != 0 || !s.IsRunning {
		t.Fatalf("expected fresh run, got %+v", s)
	}
	if got := runTicks(p, 2); len(got) != 1 {
		t.Fatalf("expected one completion on replay, got %d", len(got))
	}
}
