package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/martijn/moviereview/internal/api/session"
)

const (
	CookieName = "session_id"
	keyPrefix  = "session:"
)

// Client is the subset of the go-redis client the session store uses
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SessionStore keeps session data server-side in Redis. The cookie only
// carries a random session id.
type SessionStore struct {
	client Client
	ttl    time.Duration
	secure bool
}

func NewSessionStore(client Client, ttl time.Duration, secure bool) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		secure: secure,
	}
}

// NewClient parses a redis:// URL and verifies the server is reachable
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (s *SessionStore) Load(ctx context.Context, r *http.Request) (*session.Data, error) {
	id, ok := sessionID(r)
	if !ok {
		return &session.Data{}, nil
	}

	raw, err := s.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return &session.Data{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var data session.Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return session.Loaded(id, &data), nil
}

// Save persists data. Only ids this store handed out and found again on
// Load are reused, and a new id is issued whenever the user changes.
func (s *SessionStore) Save(ctx context.Context, w http.ResponseWriter, r *http.Request, data *session.Data) error {
	id := data.ID()

	if id != "" && (data.UserChanged() || data.Empty()) {
		if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		id = ""
	}

	if data.Empty() {
		if _, err := r.Cookie(CookieName); err == nil {
			http.SetCookie(w, s.cookie("", -1))
		}
		session.Loaded("", data)
		return nil
	}

	if id == "" {
		id = uuid.New().String()
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	http.SetCookie(w, s.cookie(id, int(s.ttl.Seconds())))
	session.Loaded(id, data)
	return nil
}

func (s *SessionStore) cookie(value string, maxAge int) *http.Cookie {
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

func sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return "", false
	}
	return cookie.Value, true
}
