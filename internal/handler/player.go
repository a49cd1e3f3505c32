package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
	"github.com/msomdec/praylude/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// PlayerHandler serves the meditation player pages and their controls.
type PlayerHandler struct {
	playback *service.PlaybackService
	catalog  *service.CatalogService
	custom   *service.CustomSessionService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(playback *service.PlaybackService, catalog *service.CatalogService, custom *service.CustomSessionService) *PlayerHandler {
	return &PlayerHandler{playback: playback, catalog: catalog, custom: custom}
}

// HandleStandard loads the standard daily session and renders the player.
func (h *PlayerHandler) HandleStandard(w http.ResponseWriter, r *http.Request) {
	plan, err := h.catalog.StandardDailySession(r.Context())
	if err != nil {
		slog.Error("build standard session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.loadAndRender(w, r, plan)
}

// HandleCustom loads one of the device's custom sessions and renders the player.
func (h *PlayerHandler) HandleCustom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	session, err := h.custom.Get(r.Context(), DeviceFromContext(r.Context()), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("get custom session", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.loadAndRender(w, r, session.Plan())
}

func (h *PlayerHandler) loadAndRender(w http.ResponseWriter, r *http.Request, plan domain.SessionPlan) {
	ctx := r.Context()
	state, err := h.playback.Load(DeviceFromContext(ctx), plan)
	if err != nil {
		if errors.Is(err, domain.ErrTooManySteps) || errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		slog.Error("load plan", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	player, err := h.playerView(ctx, plan, state)
	if err != nil {
		slog.Error("resolve plan", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	view.MeditatePage(ThemeFromContext(ctx), player).Render(ctx, w)
}

// HandleToggle starts or pauses the device's player.
func (h *PlayerHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	state, err := h.playback.Toggle(DeviceFromContext(r.Context()))
	h.respondControl(w, r, state, err)
}

// HandleReset rewinds the device's player.
func (h *PlayerHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	state, err := h.playback.Reset(DeviceFromContext(r.Context()))
	h.respondControl(w, r, state, err)
}

// respondControl patches the player fragment after a control action. An
// unplayable plan is not an error here; the fragment shows it disabled.
func (h *PlayerHandler) respondControl(w http.ResponseWriter, r *http.Request, state domain.PlaybackState, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		sse := datastar.NewSSE(w, r)
		sse.Redirect("/")
		return
	}
	if err != nil && !errors.Is(err, domain.ErrNoPlayableSteps) {
		slog.Error("player control", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	player, err := h.currentView(r.Context(), state)
	if err != nil {
		slog.Error("render player", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.PlayerFragment(player), datastar.WithSelectorID("player"))
}

// HandleStream pushes the player fragment on every state change until the
// client goes away.
func (h *PlayerHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	device := DeviceFromContext(ctx)

	// A device with no plan loaded has nothing to stream.
	states, unsubscribe, err := h.playback.Subscribe(device)
	if err != nil {
		sse := datastar.NewSSE(w, r)
		sse.Redirect("/")
		return
	}
	defer unsubscribe()

	state, err := h.playback.State(device)
	if err != nil {
		sse := datastar.NewSSE(w, r)
		sse.Redirect("/")
		return
	}

	sse := datastar.NewSSE(w, r)
	for {
		player, err := h.currentView(ctx, state)
		if err != nil {
			slog.Error("render player stream", "device", device, "error", err)
			return
		}
		if err := sse.PatchElementTempl(view.PlayerFragment(player), datastar.WithSelectorID("player")); err != nil {
			slog.Debug("player stream closed", "device", device, "error", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case state = <-states:
		}
	}
}

// currentView resolves the device's loaded plan for display with state.
func (h *PlayerHandler) currentView(ctx context.Context, state domain.PlaybackState) (view.PlayerView, error) {
	plan, err := h.playback.Plan(DeviceFromContext(ctx))
	if err != nil {
		return view.PlayerView{}, err
	}
	return h.playerView(ctx, plan, state)
}

func (h *PlayerHandler) playerView(ctx context.Context, plan domain.SessionPlan, state domain.PlaybackState) (view.PlayerView, error) {
	steps, err := h.catalog.ResolvePlan(ctx, plan)
	if err != nil {
		return view.PlayerView{}, err
	}
	return view.PlayerView{Name: plan.Name, Steps: steps, State: state}, nil
}
