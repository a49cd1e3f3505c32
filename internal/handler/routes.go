package handler

import (
	"net/http"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
)

// Services are the dependencies of the HTTP layer.
type Services struct {
	DB       domain.Database
	Devices  *service.DeviceService
	Themes   *service.ThemeService
	Catalog  *service.CatalogService
	Custom   *service.CustomSessionService
	Playback *service.PlaybackService
	History  *service.HistoryService
	Limiter  *service.TokenBucket
}

// Options toggle environment-dependent behaviour of the routes.
type Options struct {
	CookieSecure bool
	DevRoutes    bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, svc Services, opts Options) {
	health := NewHealthHandler(svc.DB)
	home := NewHomeHandler(svc.Catalog, svc.Custom, svc.History)
	catalog := NewCatalogHandler(svc.Catalog)
	player := NewPlayerHandler(svc.Playback, svc.Catalog, svc.Custom)
	history := NewHistoryHandler(svc.History, svc.Custom, svc.Catalog, opts.DevRoutes)
	builder := NewBuilderHandler(svc.Catalog, svc.Custom)
	theme := NewThemeHandler(svc.Themes)

	device := func(h http.HandlerFunc) http.Handler {
		return DeviceIdentity(svc.Devices, svc.Themes, opts.CookieSecure, h)
	}
	// Mutating routes are rate limited per client address.
	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(svc.Limiter, device(h))
	}

	mux.HandleFunc("GET /healthz", health.HandleHealthz)

	// Pages
	mux.Handle("GET /", device(home.HandleHome))
	mux.Handle("GET /meditate/standard", device(player.HandleStandard))
	mux.Handle("GET /meditate/custom/{id}", device(player.HandleCustom))
	mux.Handle("GET /create", device(builder.HandleCreatePage))
	mux.Handle("POST /create", limited(builder.HandleCreate))
	mux.Handle("POST /custom/{id}/delete", limited(builder.HandleDelete))
	mux.Handle("GET /profile", device(history.HandleProfile))
	mux.Handle("GET /profile/history", device(history.HandleHistory))
	mux.Handle("GET /profile/history/more", device(history.HandleLoadMore))
	mux.Handle("POST /theme/toggle", limited(theme.HandleToggle))

	// Player (Datastar SSE)
	mux.Handle("POST /player/toggle", limited(player.HandleToggle))
	mux.Handle("POST /player/reset", limited(player.HandleReset))
	mux.Handle("GET /player/stream", device(player.HandleStream))

	// JSON API
	mux.HandleFunc("GET /api/sections", catalog.HandleListSections)
	mux.HandleFunc("GET /api/techniques", catalog.HandleListTechniques)
	mux.Handle("GET /api/history", device(history.HandleListAPI))
	mux.Handle("GET /api/stats", device(history.HandleStatsAPI))
	mux.Handle("POST /api/history", limited(history.HandleRecordAPI))

	if opts.DevRoutes {
		mux.Handle("POST /dev/history/seed", limited(history.HandleSeed))
		mux.Handle("POST /dev/history/clear", limited(history.HandleClear))
	}
}
