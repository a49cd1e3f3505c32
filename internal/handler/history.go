package handler

import (
	"cmp"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
	"github.com/msomdec/praylude/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

const (
	recentSessionsLimit = 5
	historyPageSize     = 10
	maxNotesLength      = 1000
)

// HistoryHandler serves the profile, the session history and its JSON API.
type HistoryHandler struct {
	history   *service.HistoryService
	custom    *service.CustomSessionService
	catalog   *service.CatalogService
	devRoutes bool
	loc       *time.Location
}

// NewHistoryHandler creates a new HistoryHandler. Dates are shown in the
// server's local time.
func NewHistoryHandler(history *service.HistoryService, custom *service.CustomSessionService, catalog *service.CatalogService, devRoutes bool) *HistoryHandler {
	return &HistoryHandler{history: history, custom: custom, catalog: catalog, devRoutes: devRoutes, loc: time.Local}
}

// HandleProfile renders stats, recent sessions and saved sessions.
func (h *HistoryHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	device := DeviceFromContext(ctx)

	custom, err := h.custom.ListByDevice(ctx, device)
	if err != nil {
		slog.Error("list custom sessions for profile", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	catalogStats, err := h.catalog.DataStats(ctx)
	if err != nil {
		slog.Error("catalog stats for profile", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	records := h.history.ListCompletions(ctx, device)
	view.ProfilePage(ThemeFromContext(ctx), view.ProfileData{
		Stats:     h.history.Stats(ctx, device),
		Favorite:  service.FavoriteTimeOfDay(records, h.loc),
		Recent:    service.MostRecent(records, recentSessionsLimit),
		Custom:    custom,
		Catalog:   catalogStats,
		DevRoutes: h.devRoutes,
		Location:  h.loc,
	}).Render(ctx, w)
}

// HandleHistory renders the first page of the history.
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sortBy := sortParam(r)
	records := sortRecords(h.history.ListCompletions(ctx, DeviceFromContext(ctx)), sortBy)

	view.HistoryPage(ThemeFromContext(ctx), view.HistoryData{
		Records:    page(records, 0),
		Total:      len(records),
		Sort:       sortBy,
		NextOffset: historyPageSize,
		Location:   h.loc,
	}).Render(ctx, w)
}

// HandleLoadMore appends the next page of the history via SSE.
func (h *HistoryHandler) HandleLoadMore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	sortBy := sortParam(r)
	records := sortRecords(h.history.ListCompletions(ctx, DeviceFromContext(ctx)), sortBy)

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.HistoryItemsFragment(page(records, offset), h.loc),
		datastar.WithSelectorID("history-list"),
		datastar.WithModeAppend(),
	)
	sse.PatchElementTempl(
		view.HistoryLoadMoreFragment(len(records), offset+historyPageSize, sortBy),
	)
}

// HandleListAPI returns every record of the device.
// GET /api/history
func (h *HistoryHandler) HandleListAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, h.history.ListCompletions(ctx, DeviceFromContext(ctx)))
}

// HandleStatsAPI returns the device's stats.
// GET /api/stats
func (h *HistoryHandler) HandleStatsAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	device := DeviceFromContext(ctx)
	stats := h.history.Stats(ctx, device)

	writeJSON(w, http.StatusOK, statsDTO{
		Stats:             stats,
		FavoriteTimeOfDay: service.FavoriteTimeOfDay(h.history.ListCompletions(ctx, device), h.loc).Label(),
		TotalTime:         view.FormatTotalTime(stats.TotalMinutes),
	})
}

// HandleRecordAPI logs a completed session by hand, optionally with notes.
// POST /api/history
// Request:  {"sessionName":"...","duration":600,"notes":"..."}
// Response: the stored record
func (h *HistoryHandler) HandleRecordAPI(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	req.SessionName = strings.TrimSpace(req.SessionName)
	switch {
	case req.SessionName == "":
		writeError(w, http.StatusBadRequest, "sessionName is required.")
		return
	case req.Duration <= 0:
		writeError(w, http.StatusBadRequest, "duration must be a positive number of seconds.")
		return
	case len(req.Notes) > maxNotesLength:
		writeError(w, http.StatusBadRequest, "notes are too long.")
		return
	}

	ctx := r.Context()
	record := h.history.RecordCompletion(ctx, DeviceFromContext(ctx), req.SessionName, req.Duration, strings.TrimSpace(req.Notes))
	writeJSON(w, http.StatusCreated, record)
}

// HandleSeed replaces the device's history with demo data.
func (h *HistoryHandler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	device := DeviceFromContext(ctx)
	if err := h.history.ReplaceAll(ctx, device, service.GenerateDemoHistory(h.history.Now())); err != nil {
		slog.Error("seed demo history", "device", device, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("demo history seeded", "device", device)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// HandleClear removes the device's history and stats.
func (h *HistoryHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	device := DeviceFromContext(ctx)
	if err := h.history.Clear(ctx, device); err != nil {
		slog.Error("clear history", "device", device, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func sortParam(r *http.Request) string {
	if r.URL.Query().Get("sort") == "duration" {
		return "duration"
	}
	return "date"
}

// sortRecords orders records newest first, or longest first for "duration".
func sortRecords(records []domain.CompletedSession, sortBy string) []domain.CompletedSession {
	if sortBy != "duration" {
		return service.MostRecent(records, 0)
	}
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b domain.CompletedSession) int {
		return cmp.Compare(b.Duration, a.Duration)
	})
	return sorted
}

func page(records []domain.CompletedSession, offset int) []domain.CompletedSession {
	if offset >= len(records) {
		return nil
	}
	end := min(offset+historyPageSize, len(records))
	return records[offset:end]
}
