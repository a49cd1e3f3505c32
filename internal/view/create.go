package view

import (
	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
)

// SectionChoices is a section with the techniques that can fill it.
type SectionChoices struct {
	Section    domain.Section
	Techniques []domain.Technique
}

// CreateForm is the session builder state, including values to redisplay
// after a failed submission.
type CreateForm struct {
	Sections    []SectionChoices
	Name        string
	Description string
	Selected    map[string]service.StepSelection
	Error       string
}

// TechniqueField and DurationField name the form inputs of one section.
func TechniqueField(sectionID string) string { return "technique_" + sectionID }
func DurationField(sectionID string) string  { return "duration_" + sectionID }

// initialDuration is the submitted duration, else the chosen technique's
// default, else the first technique's default.
func initialDuration(choice SectionChoices, selected service.StepSelection) int {
	if selected.Duration != 0 {
		return selected.Duration
	}
	for _, t := range choice.Techniques {
		if t.ID == selected.TechniqueID {
			return t.DefaultDuration
		}
	}
	if len(choice.Techniques) > 0 {
		return choice.Techniques[0].DefaultDuration
	}
	return 0
}
