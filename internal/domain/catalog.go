package domain

import "context"

// SectionName is one of the six phases of a meditation, in order.
type SectionName string

const (
	SectionWelcome     SectionName = "welcome"
	SectionMind        SectionName = "mind"
	SectionBody        SectionName = "body"
	SectionSpirit      SectionName = "spirit"
	SectionMeditation  SectionName = "meditation"
	SectionIncorporate SectionName = "incorporate"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Section is a phase of the meditation journey.
type Section struct {
	ID          string      `json:"id"`
	Name        SectionName `json:"name"`
	DisplayName string      `json:"displayName"`
	Description string      `json:"description"`
	Order       int         `json:"order"`
}

// Technique is a guided exercise belonging to a section. Durations are in seconds.
type Technique struct {
	ID                  string     `json:"id"`
	SectionID           string     `json:"sectionId"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	ScriptTemplate      string     `json:"scriptTemplate"`
	DefaultDuration     int        `json:"defaultDuration"`
	MinDuration         int        `json:"minDuration"`
	MaxDuration         int        `json:"maxDuration"`
	ScriptureReferences []string   `json:"scriptureReferences,omitempty"`
	Difficulty          Difficulty `json:"difficulty"`
	CreatedAt           string     `json:"createdAt"`
	ReleasedAt          string     `json:"releasedAt,omitempty"`
}

// CatalogRepository provides read access to sections and techniques.
// Implementations own their caching policy.
type CatalogRepository interface {
	ListSections(ctx context.Context) ([]Section, error)
	GetSection(ctx context.Context, id string) (*Section, error)
	GetSectionByName(ctx context.Context, name SectionName) (*Section, error)
	ListTechniques(ctx context.Context) ([]Technique, error)
	GetTechnique(ctx context.Context, id string) (*Technique, error)
	ListTechniquesBySection(ctx context.Context, sectionID string) ([]Technique, error)
	ListTechniquesByDifficulty(ctx context.Context, difficulty Difficulty) ([]Technique, error)
}
