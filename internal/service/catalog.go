package service

import (
	"context"
	"fmt"

	"github.com/msomdec/praylude/internal/domain"
)

// StandardSessionName is the name recorded for the standard daily session.
const StandardSessionName = "Standard Meditation"

// CatalogService answers catalog queries and assembles plans from it.
type CatalogService struct {
	catalog domain.CatalogRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(catalog domain.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) ListSections(ctx context.Context) ([]domain.Section, error) {
	return s.catalog.ListSections(ctx)
}

func (s *CatalogService) GetSection(ctx context.Context, id string) (*domain.Section, error) {
	return s.catalog.GetSection(ctx, id)
}

func (s *CatalogService) GetTechnique(ctx context.Context, id string) (*domain.Technique, error) {
	return s.catalog.GetTechnique(ctx, id)
}

func (s *CatalogService) ListTechniquesBySection(ctx context.Context, sectionID string) ([]domain.Technique, error) {
	return s.catalog.ListTechniquesBySection(ctx, sectionID)
}

// StandardDailySession builds the default plan: the first technique of every
// section at its default duration. A section without techniques is skipped.
func (s *CatalogService) StandardDailySession(ctx context.Context) (domain.SessionPlan, error) {
	sections, err := s.catalog.ListSections(ctx)
	if err != nil {
		return domain.SessionPlan{}, fmt.Errorf("list sections: %w", err)
	}

	plan := domain.SessionPlan{Name: StandardSessionName}
	for _, section := range sections {
		techniques, err := s.catalog.ListTechniquesBySection(ctx, section.ID)
		if err != nil {
			return domain.SessionPlan{}, fmt.Errorf("list techniques for %s: %w", section.ID, err)
		}

		step := domain.Step{SectionID: section.ID}
		if len(techniques) > 0 {
			id := techniques[0].ID
			step.TechniqueID = &id
			step.Duration = techniques[0].DefaultDuration
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan, nil
}

// CalculateDuration sums the durations of a plan's steps.
func CalculateDuration(plan domain.SessionPlan) int {
	return plan.TotalDuration()
}

// PlanStep is a step resolved against the catalog for display.
type PlanStep struct {
	Section   domain.Section
	Technique *domain.Technique
	Duration  int
}

// ResolvePlan looks up the section and technique of every step.
func (s *CatalogService) ResolvePlan(ctx context.Context, plan domain.SessionPlan) ([]PlanStep, error) {
	resolved := make([]PlanStep, len(plan.Steps))
	for i, step := range plan.Steps {
		section, err := s.catalog.GetSection(ctx, step.SectionID)
		if err != nil {
			return nil, fmt.Errorf("get section %s: %w", step.SectionID, err)
		}
		resolved[i] = PlanStep{Section: *section, Duration: step.EffectiveDuration()}

		if step.TechniqueID != nil {
			technique, err := s.catalog.GetTechnique(ctx, *step.TechniqueID)
			if err != nil {
				return nil, fmt.Errorf("get technique %s: %w", *step.TechniqueID, err)
			}
			resolved[i].Technique = technique
		}
	}
	return resolved, nil
}

// SectionCount is the number of techniques in one section.
type SectionCount struct {
	SectionName string `json:"sectionName"`
	Count       int    `json:"count"`
}

// DataStats summarises the catalog's contents.
type DataStats struct {
	SectionCount        int                       `json:"sectionCount"`
	TechniqueCount      int                       `json:"techniqueCount"`
	TechniquesBySection []SectionCount            `json:"techniquesBySection"`
	DifficultyBreakdown map[domain.Difficulty]int `json:"difficultyBreakdown"`
}

// DataStats counts sections and techniques by section and difficulty.
func (s *CatalogService) DataStats(ctx context.Context) (DataStats, error) {
	sections, err := s.catalog.ListSections(ctx)
	if err != nil {
		return DataStats{}, fmt.Errorf("list sections: %w", err)
	}
	techniques, err := s.catalog.ListTechniques(ctx)
	if err != nil {
		return DataStats{}, fmt.Errorf("list techniques: %w", err)
	}

	stats := DataStats{
		SectionCount:   len(sections),
		TechniqueCount: len(techniques),
		DifficultyBreakdown: map[domain.Difficulty]int{
			domain.DifficultyBeginner:     0,
			domain.DifficultyIntermediate: 0,
			domain.DifficultyAdvanced:     0,
		},
	}

	perSection := make(map[string]int)
	for _, t := range techniques {
		perSection[t.SectionID]++
		stats.DifficultyBreakdown[t.Difficulty]++
	}
	for _, section := range sections {
		stats.TechniquesBySection = append(stats.TechniquesBySection, SectionCount{
			SectionName: section.DisplayName,
			Count:       perSection[section.ID],
		})
	}
	return stats, nil
}
