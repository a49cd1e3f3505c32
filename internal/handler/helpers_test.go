package handler_test

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/praylude/internal/handler"
	"github.com/msomdec/praylude/internal/repository/catalog"
	"github.com/msomdec/praylude/internal/repository/sqlite"
	"github.com/msomdec/praylude/internal/service"
)

const testDeviceSecret = "test-device-secret-for-handler-tests"

func newTestServices(t *testing.T) handler.Services {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := catalog.NewEmbedded()
	history := service.NewHistoryService(db)
	playback := service.NewPlaybackService(history, time.Millisecond)
	t.Cleanup(playback.Close)

	return handler.Services{
		DB:       db,
		Devices:  service.NewDeviceService(testDeviceSecret),
		Themes:   service.NewThemeService(db),
		Catalog:  service.NewCatalogService(repo),
		Custom:   service.NewCustomSessionService(db.CustomSessions(), repo),
		Playback: playback,
		History:  history,
		Limiter:  service.NewTokenBucket(1000, 1000),
	}
}

func newTestServer(t *testing.T, svc handler.Services, opts handler.Options) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, svc, opts)
	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns a client with its own cookie jar, i.e. its own device.
// Redirects are not followed.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
