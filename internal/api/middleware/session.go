package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ErrNoSessionCookie is returned by Read when the request carries no cookie.
var ErrNoSessionCookie = errors.New("no session cookie")

// sessionClaims is the signed cookie payload. It only carries the opaque
// session id; the identity behind it lives in the session store.
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionCookie writes and reads the HttpOnly cookie holding the session id.
// The value is an HS256 token so tampered or expired cookies are rejected
// before the session store is consulted.
type SessionCookie struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionCookie(name, secret string, ttl time.Duration, secure bool) *SessionCookie {
	return &SessionCookie{
		name:   name,
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Issue signs sessionID and sets it on the response.
func (s *SessionCookie) Issue(c echo.Context, sessionID string) error {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	c.SetCookie(s.cookie(c, signed, now.Add(s.ttl), int(s.ttl.Seconds())))
	return nil
}

// Clear expires the cookie on the client.
func (s *SessionCookie) Clear(c echo.Context) {
	c.SetCookie(s.cookie(c, "", time.Unix(0, 0), -1))
}

// Read returns the session id carried by the request cookie.
func (s *SessionCookie) Read(c echo.Context) (string, error) {
	ck, err := c.Cookie(s.name)
	if err != nil || ck.Value == "" {
		return "", ErrNoSessionCookie
	}

	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(ck.Value, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("parse session cookie: %w", err)
	}
	if !tkn.Valid || claims.SID == "" {
		return "", errors.New("parse session cookie: empty session id")
	}
	return claims.SID, nil
}

func (s *SessionCookie) cookie(c echo.Context, value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure || c.IsTLS(),
		SameSite: http.SameSiteLaxMode,
	}
}
