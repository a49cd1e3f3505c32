package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/praylude/internal/domain"
)

// StepSelection is one builder choice: a technique for a section, or an empty
// TechniqueID to skip the section.
type StepSelection struct {
	SectionID   string
	TechniqueID string
	Duration    int
}

// CustomSessionService validates and stores user-built sessions.
type CustomSessionService struct {
	sessions domain.CustomSessionRepository
	catalog  domain.CatalogRepository
}

// NewCustomSessionService creates a new CustomSessionService.
func NewCustomSessionService(sessions domain.CustomSessionRepository, catalog domain.CatalogRepository) *CustomSessionService {
	return &CustomSessionService{sessions: sessions, catalog: catalog}
}

// Create validates the selections against the catalog and saves the session.
// Steps are stored in section order.
func (s *CustomSessionService) Create(ctx context.Context, deviceID, name, description string, selections []StepSelection) (*domain.CustomSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if len(selections) > domain.MaxPlanSteps {
		return nil, fmt.Errorf("%w: at most %d sections", domain.ErrTooManySteps, domain.MaxPlanSteps)
	}

	bySection := make(map[string]StepSelection, len(selections))
	for _, sel := range selections {
		if _, dup := bySection[sel.SectionID]; dup {
			return nil, fmt.Errorf("%w: section %s chosen twice", domain.ErrInvalidInput, sel.SectionID)
		}
		bySection[sel.SectionID] = sel
	}

	sections, err := s.catalog.ListSections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	session := &domain.CustomSession{
		DeviceID:    deviceID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	playable := false
	for _, section := range sections {
		sel, ok := bySection[section.ID]
		if !ok {
			continue
		}
		delete(bySection, section.ID)

		step := domain.CustomStep{SectionID: section.ID, Order: section.Order}
		if sel.TechniqueID != "" {
			technique, err := s.validTechnique(ctx, section, sel)
			if err != nil {
				return nil, err
			}
			id := technique.ID
			step.TechniqueID = &id
			step.Duration = sel.Duration
			playable = playable || sel.Duration > 0
		}
		session.Steps = append(session.Steps, step)
		session.TotalDuration += step.Duration
	}

	for sectionID := range bySection {
		return nil, fmt.Errorf("%w: unknown section %s", domain.ErrInvalidInput, sectionID)
	}
	if !playable {
		return nil, fmt.Errorf("%w: choose at least one technique", domain.ErrNoPlayableSteps)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create custom session: %w", err)
	}
	return session, nil
}

func (s *CustomSessionService) validTechnique(ctx context.Context, section domain.Section, sel StepSelection) (*domain.Technique, error) {
	technique, err := s.catalog.GetTechnique(ctx, sel.TechniqueID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown technique %s", domain.ErrInvalidInput, sel.TechniqueID)
	}
	if technique.SectionID != section.ID {
		return nil, fmt.Errorf("%w: technique %s does not belong to %s", domain.ErrInvalidInput, technique.ID, section.DisplayName)
	}
	if sel.Duration < technique.MinDuration || sel.Duration > technique.MaxDuration {
		return nil, fmt.Errorf("%w: %s must last between %d and %d seconds",
			domain.ErrInvalidInput, technique.Name, technique.MinDuration, technique.MaxDuration)
	}
	return technique, nil
}

// Get returns a session owned by the device. Sessions of other devices are
// reported as not found.
func (s *CustomSessionService) Get(ctx context.Context, deviceID string, id int64) (*domain.CustomSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.DeviceID != deviceID {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

// ListByDevice returns the device's sessions, newest first.
func (s *CustomSessionService) ListByDevice(ctx context.Context, deviceID string) ([]domain.CustomSession, error) {
	return s.sessions.ListByDevice(ctx, deviceID)
}

// Delete removes a session owned by the device.
func (s *CustomSessionService) Delete(ctx context.Context, deviceID string, id int64) error {
	if _, err := s.Get(ctx, deviceID, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}
