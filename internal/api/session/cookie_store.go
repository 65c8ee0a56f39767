package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "session"
	issuer     = "moviereview"
)

// CookieStore keeps the whole session client-side in an HMAC-signed JWT
type CookieStore struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewCookieStore(secret string, ttl time.Duration, secure bool) *CookieStore {
	return &CookieStore{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

type claims struct {
	User    string   `json:"user,omitempty"`
	Flashes []string `json:"flashes,omitempty"`
	jwt.RegisteredClaims
}

func (s *CookieStore) Load(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return &Data{}, nil
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("invalid session cookie: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session claims")
	}

	return &Data{User: c.User, Flashes: c.Flashes}, nil
}

func (s *CookieStore) Save(ctx context.Context, w http.ResponseWriter, r *http.Request, data *Data) error {
	if data.Empty() {
		if _, err := r.Cookie(CookieName); err == nil {
			http.SetCookie(w, s.cookie("", -1))
		}
		return nil
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		User:    data.User,
		Flashes: data.Flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, s.cookie(signed, int(s.ttl.Seconds())))
	return nil
}

func (s *CookieStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
