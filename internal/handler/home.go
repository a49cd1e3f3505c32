package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/praylude/internal/service"
	"github.com/msomdec/praylude/internal/view"
)

// HomeHandler renders the landing page.
type HomeHandler struct {
	catalog *service.CatalogService
	custom  *service.CustomSessionService
	history *service.HistoryService
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(catalog *service.CatalogService, custom *service.CustomSessionService, history *service.HistoryService) *HomeHandler {
	return &HomeHandler{catalog: catalog, custom: custom, history: history}
}

// HandleHome renders the home page. Any path other than "/" is a 404.
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	device := DeviceFromContext(ctx)

	sections, err := h.catalog.ListSections(ctx)
	if err != nil {
		slog.Error("list sections for home", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	plan, err := h.catalog.StandardDailySession(ctx)
	if err != nil {
		slog.Error("build standard session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	standard, err := h.catalog.ResolvePlan(ctx, plan)
	if err != nil {
		slog.Error("resolve standard session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	custom, err := h.custom.ListByDevice(ctx, device)
	if err != nil {
		slog.Error("list custom sessions for home", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view.HomePage(ThemeFromContext(ctx), view.HomeData{
		Sections:      sections,
		Standard:      standard,
		StandardTotal: service.CalculateDuration(plan),
		Custom:        custom,
		Stats:         h.history.Stats(ctx, device),
	}).Render(ctx, w)
}
