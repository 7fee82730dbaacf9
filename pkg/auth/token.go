package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 7 * 24 * time.Hour

// InsecureDefaultSecret is the fallback signing secret. Deployments must
// override it; the server logs a warning when it is in use.
const InsecureDefaultSecret = "your-secret-key"

var ErrInvalidToken = errors.New("invalid or expired token")

type SessionClaims struct {
	UserID     int64  `json:"userId"`
	Email      string `json:"email,omitempty"`
	TelegramID *int64 `json:"telegramId,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies session tokens with a shared HS256 secret.
type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

func (m *TokenManager) IssueEmailToken(userID int64, email string) (string, error) {
	return m.sign(SessionClaims{UserID: userID, Email: email})
}

func (m *TokenManager) IssueTelegramToken(userID, telegramID int64) (string, error) {
	return m.sign(SessionClaims{UserID: userID, TelegramID: &telegramID})
}

func (m *TokenManager) sign(claims SessionClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the embedded claims.
func (m *TokenManager) Verify(tokenString string) (*SessionClaims, error) {
	var claims SessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
