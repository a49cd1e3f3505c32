package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
	"github.com/msomdec/praylude/internal/view"
)

// BuilderHandler serves the custom session builder.
type BuilderHandler struct {
	catalog *service.CatalogService
	custom  *service.CustomSessionService
}

// NewBuilderHandler creates a new BuilderHandler.
func NewBuilderHandler(catalog *service.CatalogService, custom *service.CustomSessionService) *BuilderHandler {
	return &BuilderHandler{catalog: catalog, custom: custom}
}

// HandleCreatePage renders an empty builder form.
func (h *BuilderHandler) HandleCreatePage(w http.ResponseWriter, r *http.Request) {
	form, err := h.newForm(r.Context())
	if err != nil {
		slog.Error("build create form", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	view.CreatePage(ThemeFromContext(r.Context()), form).Render(r.Context(), w)
}

// HandleCreate saves a custom session and redirects to its player. Invalid
// input re-renders the form with the submitted values and the reason.
func (h *BuilderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form, err := h.newForm(ctx)
	if err != nil {
		slog.Error("build create form", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	form.Name = r.FormValue("name")
	form.Description = r.FormValue("description")

	var selections []service.StepSelection
	for _, choice := range form.Sections {
		id := choice.Section.ID
		sel := service.StepSelection{
			SectionID:   id,
			TechniqueID: r.FormValue(view.TechniqueField(id)),
		}
		if sel.TechniqueID != "" {
			sel.Duration = parseIntOrZero(r.FormValue(view.DurationField(id)))
		}
		form.Selected[id] = sel
		selections = append(selections, sel)
	}

	session, err := h.custom.Create(ctx, DeviceFromContext(ctx), form.Name, form.Description, selections)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrTooManySteps) || errors.Is(err, domain.ErrNoPlayableSteps) {
			form.Error = validationMessage(err)
			w.WriteHeader(http.StatusUnprocessableEntity)
			view.CreatePage(ThemeFromContext(ctx), form).Render(ctx, w)
			return
		}
		slog.Error("create custom session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("custom session created", "id", session.ID, "steps", len(session.Steps))
	http.Redirect(w, r, "/meditate/custom/"+strconv.FormatInt(session.ID, 10), http.StatusSeeOther)
}

// HandleDelete removes a custom session of the device.
func (h *BuilderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.custom.Delete(r.Context(), DeviceFromContext(r.Context()), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("delete custom session", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *BuilderHandler) newForm(ctx context.Context) (view.CreateForm, error) {
	sections, err := h.catalog.ListSections(ctx)
	if err != nil {
		return view.CreateForm{}, err
	}
	form := view.CreateForm{Selected: make(map[string]service.StepSelection)}
	for _, section := range sections {
		techniques, err := h.catalog.ListTechniquesBySection(ctx, section.ID)
		if err != nil {
			return view.CreateForm{}, err
		}
		form.Sections = append(form.Sections, view.SectionChoices{Section: section, Techniques: techniques})
	}
	return form, nil
}

// validationMessage strips the sentinel prefix from a validation error.
func validationMessage(err error) string {
	msg := err.Error()
	if _, after, found := strings.Cut(msg, ": "); found {
		return after
	}
	return msg
}

func parseIntOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
