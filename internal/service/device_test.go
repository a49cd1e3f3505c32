package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
)

const testDeviceSecret = "test-device-secret-for-unit-tests-only"

func TestDeviceService_NewDeviceAndValidate(t *testing.T) {
	svc := service.NewDeviceService(testDeviceSecret)

	deviceID, token, err := svc.NewDevice()
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	if deviceID == "" || token == "" {
		t.Fatal("expected device ID and token")
	}

	got, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got != deviceID {
		t.Fatalf("expected device %s, got %s", deviceID, got)
	}
}

func TestDeviceService_DistinctDevices(t *testing.T) {
	svc := service.NewDeviceService(testDeviceSecret)

	a, _, _ := svc.NewDevice()
	b, _, _ := svc.NewDevice()
	if a == b {
		t.Fatal("expected distinct device IDs")
	}
}

func TestDeviceService_RejectsBadTokens(t *testing.T) {
	svc := service.NewDeviceService(testDeviceSecret)
	other := service.NewDeviceService("a-completely-different-secret-value!!")

	_, foreign, err := other.NewDevice()
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}

	_, valid, err := svc.NewDevice()
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	tampered := valid[:len(valid)-4] + "abcd"

	notUUID, err := svc.IssueToken("not-a-uuid")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "6f1c2d4e-0000-4000-8000-000000000000",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte(testDeviceSecret))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: "6f1c2d4e-0000-4000-8000-000000000000",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	tests := map[string]string{
		"garbage":        "not.a.token",
		"empty":          "",
		"wrong secret":   foreign,
		"tampered":       tampered,
		"non-uuid":       notUUID,
		"expired":        expired,
		"unsigned token": none,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}
