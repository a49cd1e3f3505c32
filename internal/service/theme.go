package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/msomdec/praylude/internal/domain"
)

// ThemeService persists the light/dark preference of a device.
type ThemeService struct {
	storage domain.StorageProvider
}

// NewThemeService creates a new ThemeService.
func NewThemeService(storage domain.StorageProvider) *ThemeService {
	return &ThemeService{storage: storage}
}

// Get returns the device's theme, falling back to the default when nothing
// valid is stored or storage cannot be read.
func (s *ThemeService) Get(ctx context.Context, deviceID string) domain.Theme {
	raw, err := s.storage.Storage(deviceID).Get(ctx, domain.KeyTheme)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("read theme", "device", deviceID, "error", err)
		}
		return domain.DefaultTheme
	}
	if theme := domain.Theme(raw); theme.Valid() {
		return theme
	}
	return domain.DefaultTheme
}

// Set stores theme for the device.
func (s *ThemeService) Set(ctx context.Context, deviceID string, theme domain.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: unknown theme %q", domain.ErrInvalidInput, theme)
	}
	if err := s.storage.Storage(deviceID).Set(ctx, domain.KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Toggle switches between dark and light and returns the new theme. A failed
// save is logged; the toggled theme is still returned.
func (s *ThemeService) Toggle(ctx context.Context, deviceID string) domain.Theme {
	next := domain.ThemeLight
	if s.Get(ctx, deviceID) == domain.ThemeLight {
		next = domain.ThemeDark
	}
	if err := s.Set(ctx, deviceID, next); err != nil {
		slog.Warn("toggle theme", "device", deviceID, "error", err)
	}
	return next
}
