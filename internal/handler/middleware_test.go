package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/handler"
	"github.com/msomdec/praylude/internal/service"
)

func deviceCookieFrom(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "device_token" {
			return c
		}
	}
	t.Fatal("expected device_token cookie")
	return nil
}

func TestDeviceIdentity_MintsNewDevice(t *testing.T) {
	svc := newTestServices(t)

	var gotDevice string
	var gotTheme domain.Theme
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDevice = handler.DeviceFromContext(r.Context())
		gotTheme = handler.ThemeFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.DeviceIdentity(svc.Devices, svc.Themes, true, inner).ServeHTTP(w, req)

	if gotDevice == "" {
		t.Fatal("expected a device ID in the context")
	}
	if gotTheme != domain.ThemeDark {
		t.Fatalf("expected default theme, got %q", gotTheme)
	}

	cookie := deviceCookieFrom(t, w.Result())
	if !cookie.HttpOnly || !cookie.Secure {
		t.Fatal("expected an HttpOnly, Secure cookie")
	}
	deviceID, err := svc.Devices.ValidateToken(cookie.Value)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if deviceID != gotDevice {
		t.Fatalf("cookie device %s does not match context device %s", deviceID, gotDevice)
	}
}

func TestDeviceIdentity_KeepsExistingDevice(t *testing.T) {
	svc := newTestServices(t)
	deviceID, token, err := svc.Devices.NewDevice()
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	if err := svc.Themes.Set(t.Context(), deviceID, domain.ThemeLight); err != nil {
		t.Fatalf("Set theme: %v", err)
	}

	var gotDevice string
	var gotTheme domain.Theme
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDevice = handler.DeviceFromContext(r.Context())
		gotTheme = handler.ThemeFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "device_token", Value: token})
	w := httptest.NewRecorder()
	handler.DeviceIdentity(svc.Devices, svc.Themes, false, inner).ServeHTTP(w, req)

	if gotDevice != deviceID {
		t.Fatalf("expected device %s, got %s", deviceID, gotDevice)
	}
	if gotTheme != domain.ThemeLight {
		t.Fatalf("expected stored theme, got %q", gotTheme)
	}
	deviceCookieFrom(t, w.Result())
}

func TestDeviceIdentity_ReplacesTamperedToken(t *testing.T) {
	svc := newTestServices(t)

	var gotDevice string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDevice = handler.DeviceFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "device_token", Value: "invalid.jwt.token"})
	w := httptest.NewRecorder()
	handler.DeviceIdentity(svc.Devices, svc.Themes, false, inner).ServeHTTP(w, req)

	if gotDevice == "" {
		t.Fatal("expected a fresh device")
	}
	cookie := deviceCookieFrom(t, w.Result())
	if cookie.Value == "invalid.jwt.token" {
		t.Fatal("expected the invalid token to be replaced")
	}
}

func TestDeviceFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := handler.DeviceFromContext(req.Context()); got != "" {
		t.Fatalf("expected empty device, got %q", got)
	}
	if got := handler.ThemeFromContext(req.Context()); got != domain.DefaultTheme {
		t.Fatalf("expected default theme, got %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := service.NewTokenBucket(0, 2)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := handler.RateLimit(limiter, inner)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/player/toggle", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent {
		t.Fatalf("expected first two requests through, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third request, got %d", codes[2])
	}

	// A different address has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/player/toggle", nil)
	req.RemoteAddr = "198.51.100.1:4444"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected other client through, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	w := httptest.NewRecorder()
	handler.SecurityHeaders(inner).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy", "Content-Security-Policy"} {
		if w.Header().Get(header) == "" {
			t.Errorf("expected %s to be set", header)
		}
	}
}
