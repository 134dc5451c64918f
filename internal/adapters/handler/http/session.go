package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "sessionId"
	sessionLifetime   = 30 * 24 * time.Hour
)

var errInvalidSession = errors.New("invalid session cookie")

// SessionCookies issues and verifies the anonymous voter cookie. The cookie
// value is an HS256 token whose subject is the session id.
type SessionCookies struct {
	secret   []byte
	domain   string
	secure   bool
	sameSite http.SameSite
}

func NewSessionCookies(secret string, domain string, secure bool, sameSite http.SameSite) *SessionCookies {
	return &SessionCookies{
		secret:   []byte(secret),
		domain:   domain,
		secure:   secure,
		sameSite: sameSite,
	}
}

// Read returns the session id carried by the request, or "" when the cookie
// is missing or fails verification.
func (s *SessionCookies) Read(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	sessionID, err := s.verify(cookie.Value)
	if err != nil {
		return ""
	}
	return sessionID
}

func (s *SessionCookies) Write(w http.ResponseWriter, sessionID string) error {
	value, err := s.sign(sessionID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   s.domain,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite,
		MaxAge:   int(sessionLifetime.Seconds()),
	})
	return nil
}

func (s *SessionCookies) sign(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionLifetime)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return token, nil
}

func (s *SessionCookies) verify(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidSession, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", errInvalidSession
	}
	return claims.Subject, nil
}
