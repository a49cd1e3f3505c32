package handler

import (
	"github.com/msomdec/praylude/internal/domain"
)

// statsDTO is the JSON shape of GET /api/stats.
type statsDTO struct {
	domain.Stats
	FavoriteTimeOfDay string `json:"favoriteTimeOfDay"`
	TotalTime         string `json:"totalTime"`
}

// recordRequest is the body of POST /api/history.
type recordRequest struct {
	SessionName string `json:"sessionName"`
	Duration    int    `json:"duration"`
	Notes       string `json:"notes"`
}
