package handler

import (
	"net/http"
	"net/url"

	"github.com/msomdec/praylude/internal/service"
)

// ThemeHandler switches the device between dark and light.
type ThemeHandler struct {
	themes *service.ThemeService
}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler(themes *service.ThemeService) *ThemeHandler {
	return &ThemeHandler{themes: themes}
}

// HandleToggle flips the theme and sends the browser back where it came from.
func (h *ThemeHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	h.themes.Toggle(r.Context(), DeviceFromContext(r.Context()))
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// returnPath is the same-site path of the Referer, or "/".
func returnPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || ref.Path[0] != '/' {
		return "/"
	}
	if ref.Host != "" && ref.Host != r.Host {
		return "/"
	}
	path := ref.EscapedPath()
	if len(path) > 1 && path[1] == '/' {
		return "/"
	}
	if ref.RawQuery != "" {
		path += "?" + ref.RawQuery
	}
	return path
}
