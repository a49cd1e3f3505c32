package domain

import (
	"context"
	"time"
)

// CustomSession is a user-built plan saved for a device.
type CustomSession struct {
	ID            int64
	DeviceID      string
	Name          string
	Description   string
	Steps         []CustomStep
	TotalDuration int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CustomStep links a technique to a custom session. Order matches the section order.
type CustomStep struct {
	SectionID   string
	TechniqueID *string
	Duration    int
	Order       int
}

// Plan converts the saved session into a playable plan.
func (c *CustomSession) Plan() SessionPlan {
	steps := make([]Step, len(c.Steps))
	for i, s := range c.Steps {
		steps[i] = Step{SectionID: s.SectionID, TechniqueID: s.TechniqueID, Duration: s.Duration}
	}
	return SessionPlan{Name: c.Name, Steps: steps}
}

type CustomSessionRepository interface {
	Create(ctx context.Context, session *CustomSession) error
	GetByID(ctx context.Context, id int64) (*CustomSession, error)
	ListByDevice(ctx context.Context, deviceID string) ([]CustomSession, error)
	Delete(ctx context.Context, id int64) error
}
