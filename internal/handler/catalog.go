package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
)

// CatalogHandler serves the content catalog as JSON.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// HandleListSections returns every section in order.
// GET /api/sections
func (h *CatalogHandler) HandleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.catalog.ListSections(r.Context())
	if err != nil {
		slog.Error("list sections", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch sections.")
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

// HandleListTechniques returns the techniques of one section.
// GET /api/techniques?sectionId=...
func (h *CatalogHandler) HandleListTechniques(w http.ResponseWriter, r *http.Request) {
	sectionID := r.URL.Query().Get("sectionId")
	if sectionID == "" {
		writeError(w, http.StatusBadRequest, "sectionId query parameter is required.")
		return
	}

	if _, err := h.catalog.GetSection(r.Context(), sectionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Section not found.")
			return
		}
		slog.Error("get section", "section", sectionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch techniques.")
		return
	}

	techniques, err := h.catalog.ListTechniquesBySection(r.Context(), sectionID)
	if err != nil {
		slog.Error("list techniques", "section", sectionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch techniques.")
		return
	}
	writeJSON(w, http.StatusOK, techniques)
}
