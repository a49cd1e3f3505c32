package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/praylude/internal/domain"
)

// DeviceTokenTTL is how long a device token stays valid. Tokens are
// reissued on every visit, so an active device never expires.
const DeviceTokenTTL = 365 * 24 * time.Hour

// DeviceService issues and validates the signed tokens identifying a
// browser. The device ID scopes all of that browser's stored data.
type DeviceService struct {
	secret []byte
}

// NewDeviceService creates a DeviceService signing with secret.
func NewDeviceService(secret string) *DeviceService {
	return &DeviceService{secret: []byte(secret)}
}

// NewDevice mints a device ID and its signed token.
func (s *DeviceService) NewDevice() (deviceID, token string, err error) {
	deviceID = uuid.NewString()
	token, err = s.IssueToken(deviceID)
	if err != nil {
		return "", "", err
	}
	return deviceID, token, nil
}

// IssueToken signs a token for deviceID.
func (s *DeviceService) IssueToken(deviceID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   deviceID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(DeviceTokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign device token: %w", err)
	}
	return token, nil
}

// ValidateToken parses a token and returns the device ID from its subject.
func (s *DeviceService) ValidateToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}
