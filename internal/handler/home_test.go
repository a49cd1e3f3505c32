package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/msomdec/praylude/internal/handler"
)

func TestHandleHome(t *testing.T) {
	srv := newTestServer(t, newTestServices(t), handler.Options{})

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"Daily Meditation", "Settling In", "20 minutes", `href="/meditate/standard"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected home page to contain %q", want)
		}
	}
}

func TestHandleHomeNotFound(t *testing.T) {
	svc := newTestServices(t)
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()

	handler.NewHomeHandler(svc.Catalog, svc.Custom, svc.History).HandleHome(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
