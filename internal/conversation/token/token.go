// Package token mints and verifies the widget's ephemeral session tokens.
// A session token is a convenience handle correlating one visitor's
// messages; it is never persisted server-side.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenType = "widget_session"

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// NewVisitorID generates an opaque web visitor identity.
func NewVisitorID() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "v_" + base64.RawURLEncoding.EncodeToString(b), nil
}

// Mint signs a session token carrying the visitor id.
func (m *Manager) Mint(visitorID string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  visitorID,
		"type": tokenType,
		"exp":  time.Now().Add(m.ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses a session token and returns the visitor id.
func (m *Manager) Verify(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("invalid session token")
	}
	if typ, _ := claims["type"].(string); typ != tokenType {
		return "", fmt.Errorf("wrong token type")
	}
	visitorID, _ := claims["sub"].(string)
	if visitorID == "" {
		return "", fmt.Errorf("session token missing subject")
	}
	return visitorID, nil
}
