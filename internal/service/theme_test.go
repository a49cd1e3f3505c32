package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
)

func TestThemeService_DefaultsToDark(t *testing.T) {
	svc := service.NewThemeService(newTestDB(t))

	if got := svc.Get(context.Background(), "dev-1"); got != domain.ThemeDark {
		t.Fatalf("expected dark, got %q", got)
	}
}

func TestThemeService_SetAndToggle(t *testing.T) {
	svc := service.NewThemeService(newTestDB(t))
	ctx := context.Background()

	if err := svc.Set(ctx, "dev-1", domain.ThemeLight); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := svc.Get(ctx, "dev-1"); got != domain.ThemeLight {
		t.Fatalf("expected light, got %q", got)
	}

	if got := svc.Toggle(ctx, "dev-1"); got != domain.ThemeDark {
		t.Fatalf("expected toggle to dark, got %q", got)
	}
	if got := svc.Toggle(ctx, "dev-1"); got != domain.ThemeLight {
		t.Fatalf("expected toggle to light, got %q", got)
	}
	if got := svc.Get(ctx, "dev-2"); got != domain.ThemeDark {
		t.Fatalf("other device should keep the default, got %q", got)
	}
}

func TestThemeService_RejectsUnknownTheme(t *testing.T) {
	svc := service.NewThemeService(newTestDB(t))

	err := svc.Set(context.Background(), "dev-1", domain.Theme("sepia"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestThemeService_InvalidStoredValueFallsBack(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewThemeService(db)
	ctx := context.Background()

	if err := db.Storage("dev-1").Set(ctx, domain.KeyTheme, "purple"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := svc.Get(ctx, "dev-1"); got != domain.ThemeDark {
		t.Fatalf("expected dark fallback, got %q", got)
	}
}

func TestThemeService_UnavailableStorage(t *testing.T) {
	storage := newMemStorage()
	storage.failGet = true
	storage.failSet = true
	svc := service.NewThemeService(storage)
	ctx := context.Background()

	if got := svc.Get(ctx, "dev-1"); got != domain.ThemeDark {
		t.Fatalf("expected dark fallback, got %q", got)
	}
	if got := svc.Toggle(ctx, "dev-1"); got != domain.ThemeLight {
		t.Fatalf("expected toggled theme even when save fails, got %q", got)
	}
}
