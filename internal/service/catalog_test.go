package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/repository/catalog"
	"github.com/msomdec/praylude/internal/service"
)

func newTestCatalogService(t *testing.T) *service.CatalogService {
	t.Helper()
	return service.NewCatalogService(catalog.NewEmbedded())
}

func TestCatalogService_StandardDailySession(t *testing.T) {
	svc := newTestCatalogService(t)

	plan, err := svc.StandardDailySession(context.Background())
	if err != nil {
		t.Fatalf("StandardDailySession: %v", err)
	}
	if plan.Name != service.StandardSessionName {
		t.Fatalf("expected name %q, got %q", service.StandardSessionName, plan.Name)
	}
	if len(plan.Steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(plan.Steps))
	}

	wantFirst := []string{"welcome-001", "mind-001", "body-001", "spirit-001", "meditation-001", "incorporate-001"}
	for i, step := range plan.Steps {
		if step.TechniqueID == nil || *step.TechniqueID != wantFirst[i] {
			t.Fatalf("step %d: expected technique %s, got %v", i, wantFirst[i], step.TechniqueID)
		}
	}
	if got := service.CalculateDuration(plan); got != 1200 {
		t.Fatalf("expected 1200 seconds, got %d", got)
	}
}

func TestCatalogService_StandardDailySession_EmptySection(t *testing.T) {
	repo := catalog.NewBytes([]byte(`{
		"sections": [
			{"id": "s1", "name": "welcome", "displayName": "Welcome", "order": 1},
			{"id": "s2", "name": "mind", "displayName": "Mind", "order": 2}
		],
		"techniques": [
			{"id": "t1", "sectionId": "s1", "name": "Hello", "defaultDuration": 60, "minDuration": 30, "maxDuration": 120, "difficulty": "beginner"}
		]
	}`))
	svc := service.NewCatalogService(repo)

	plan, err := svc.StandardDailySession(context.Background())
	if err != nil {
		t.Fatalf("StandardDailySession: %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan.Steps))
	}
	if !plan.Steps[1].Skipped() || plan.Steps[1].Duration != 0 {
		t.Fatalf("expected empty section to be skipped, got %+v", plan.Steps[1])
	}
	if plan.TotalDuration() != 60 {
		t.Fatalf("expected 60 seconds, got %d", plan.TotalDuration())
	}
}

func TestCatalogService_ResolvePlan(t *testing.T) {
	svc := newTestCatalogService(t)
	ctx := context.Background()

	plan, err := svc.StandardDailySession(ctx)
	if err != nil {
		t.Fatalf("StandardDailySession: %v", err)
	}
	plan.Steps[2].TechniqueID = nil

	resolved, err := svc.ResolvePlan(ctx, plan)
	if err != nil {
		t.Fatalf("ResolvePlan: %v", err)
	}
	if resolved[0].Section.Name != domain.SectionWelcome || resolved[0].Technique.Name != "Settling In" {
		t.Fatalf("unexpected first step: %+v", resolved[0])
	}
	if resolved[2].Technique != nil || resolved[2].Duration != 0 {
		t.Fatalf("expected skipped body step, got %+v", resolved[2])
	}

	bad := domain.SessionPlan{Steps: []domain.Step{{SectionID: "section-nowhere"}}}
	if _, err := svc.ResolvePlan(ctx, bad); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogService_DataStats(t *testing.T) {
	svc := newTestCatalogService(t)

	stats, err := svc.DataStats(context.Background())
	if err != nil {
		t.Fatalf("DataStats: %v", err)
	}
	if stats.SectionCount != 6 || stats.TechniqueCount != 10 {
		t.Fatalf("expected 6 sections and 10 techniques, got %d and %d", stats.SectionCount, stats.TechniqueCount)
	}
	if stats.DifficultyBreakdown[domain.DifficultyBeginner] != 5 {
		t.Fatalf("expected 5 beginner techniques, got %d", stats.DifficultyBreakdown[domain.DifficultyBeginner])
	}
	if len(stats.TechniquesBySection) != 6 || stats.TechniquesBySection[2].Count != 2 {
		t.Fatalf("unexpected per-section counts: %+v", stats.TechniquesBySection)
	}
}
