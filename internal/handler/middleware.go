package handler

import (
	"context"
	"net"
	"net/http"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
)

type contextKey string

const (
	deviceContextKey contextKey = "device"
	themeContextKey  contextKey = "theme"
)

// deviceCookie holds the signed device token.
const deviceCookie = "device_token"

// DeviceFromContext returns the device ID set by DeviceIdentity, or "" when
// the request did not pass through it.
func DeviceFromContext(ctx context.Context) string {
	device, _ := ctx.Value(deviceContextKey).(string)
	return device
}

// ThemeFromContext returns the device's theme, or the default theme.
func ThemeFromContext(ctx context.Context) domain.Theme {
	if theme, ok := ctx.Value(themeContextKey).(domain.Theme); ok {
		return theme
	}
	return domain.DefaultTheme
}

// DeviceIdentity identifies the browser by its device_token cookie, minting
// a new device when the cookie is missing or invalid. The token is reissued
// on every request so active devices never expire. The device ID and its
// theme are injected into the request context.
func DeviceIdentity(devices *service.DeviceService, themes *service.ThemeService, cookieSecure bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := ""
		if cookie, err := r.Cookie(deviceCookie); err == nil {
			deviceID, _ = devices.ValidateToken(cookie.Value)
		}

		var token string
		var err error
		if deviceID == "" {
			deviceID, token, err = devices.NewDevice()
		} else {
			token, err = devices.IssueToken(deviceID)
		}
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     deviceCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   cookieSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(service.DeviceTokenTTL.Seconds()),
		})

		ctx := context.WithValue(r.Context(), deviceContextKey, deviceID)
		ctx = context.WithValue(ctx, themeContextKey, themes.Get(ctx, deviceID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimit rejects requests with 429 once the client address has used up
// its tokens.
func RateLimit(limiter *service.TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders sets conservative browser security headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self' 'unsafe-eval' https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}
