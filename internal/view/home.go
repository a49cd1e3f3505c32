package view

import (
	"fmt"

	"github.com/a-h/templ"
	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
)

// HomeData is everything shown on the landing page.
type HomeData struct {
	Sections      []domain.Section
	Standard      []service.PlanStep
	StandardTotal int
	Custom        []domain.CustomSession
	Stats         domain.Stats
}

func customPlayURL(id int64) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/meditate/custom/%d", id))
}

func customDeleteURL(id int64) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/custom/%d/delete", id))
}
