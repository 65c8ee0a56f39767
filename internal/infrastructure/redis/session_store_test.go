package redis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/martijn/moviereview/internal/api/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeClient) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func requestWith(cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestSessionStore_SaveAndLoad(t *testing.T) {
	client := newFakeClient()
	store := NewSessionStore(client, time.Hour, false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	require.NoError(t, store.Save(ctx, w, requestWith(nil), &session.Data{User: "bob", Flashes: []string{"hi"}}))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, time.Hour, client.ttls[keyPrefix+cookies[0].Value])

	data, err := store.Load(ctx, requestWith(cookies))
	require.NoError(t, err)
	assert.Equal(t, "bob", data.User)
	assert.Equal(t, []string{"hi"}, data.Flashes)
}

// saveNew stores data under a fresh id and returns the issued cookies
func saveNew(t *testing.T, store *SessionStore, data *session.Data) []*http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	require.NoError(t, store.Save(context.Background(), w, requestWith(nil), data))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies
}

func TestSessionStore_ReusesSessionID(t *testing.T) {
	client := newFakeClient()
	store := NewSessionStore(client, time.Hour, false)
	ctx := context.Background()
	first := saveNew(t, store, &session.Data{User: "bob"})

	data, err := store.Load(ctx, requestWith(first))
	require.NoError(t, err)
	data.AddFlash("again")

	w := httptest.NewRecorder()
	require.NoError(t, store.Save(ctx, w, requestWith(first), data))
	second := w.Result().Cookies()

	require.Len(t, second, 1)
	assert.Equal(t, first[0].Value, second[0].Value)
	assert.Len(t, client.data, 1)
}

func TestSessionStore_EmptyDeletesKey(t *testing.T) {
	client := newFakeClient()
	store := NewSessionStore(client, time.Hour, false)
	ctx := context.Background()
	cookies := saveNew(t, store, &session.Data{User: "bob"})

	data, err := store.Load(ctx, requestWith(cookies))
	require.NoError(t, err)
	data.User = ""

	w := httptest.NewRecorder()
	require.NoError(t, store.Save(ctx, w, requestWith(cookies), data))

	assert.Empty(t, client.data)
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestSessionStore_PlantedIDIsNeverReused(t *testing.T) {
	client := newFakeClient()
	store := NewSessionStore(client, time.Hour, false)
	ctx := context.Background()
	planted := []*http.Cookie{{Name: CookieName, Value: "11111111-2222-3333-4444-555555555555"}}

	data, err := store.Load(ctx, requestWith(planted))
	require.NoError(t, err)
	assert.Empty(t, data.ID())

	data.User = "victim"
	w := httptest.NewRecorder()
	require.NoError(t, store.Save(ctx, w, requestWith(planted), data))

	issued := w.Result().Cookies()
	require.Len(t, issued, 1)
	assert.NotEqual(t, planted[0].Value, issued[0].Value)
	assert.NotContains(t, client.data, keyPrefix+planted[0].Value)

	// Whoever still holds the planted id stays anonymous
	attacker, err := store.Load(ctx, requestWith(planted))
	require.NoError(t, err)
	assert.Empty(t, attacker.User)
}

func TestSessionStore_RotatesIDWhenUserChanges(t *testing.T) {
	client := newFakeClient()
	store := NewSessionStore(client, time.Hour, false)
	ctx := context.Background()

	// An anonymous session holding a notice, then a login
	anon := saveNew(t, store, &session.Data{Flashes: []string{"Please log in first"}})
	data, err := store.Load(ctx, requestWith(anon))
	require.NoError(t, err)
	data.User = "bob"

	w := httptest.NewRecorder()
	require.NoError(t, store.Save(ctx, w, requestWith(anon), data))
	loggedIn := w.Result().Cookies()
	require.Len(t, loggedIn, 1)
	assert.NotEqual(t, anon[0].Value, loggedIn[0].Value)
	assert.NotContains(t, client.data, keyPrefix+anon[0].Value)

	// Logging out keeps the notice but moves it to yet another id
	data, err = store.Load(ctx, requestWith(loggedIn))
	require.NoError(t, err)
	data.User = ""
	data.AddFlash("You have been logged out")

	w = httptest.NewRecorder()
	require.NoError(t, store.Save(ctx, w, requestWith(loggedIn), data))
	loggedOut := w.Result().Cookies()
	require.Len(t, loggedOut, 1)
	assert.NotEqual(t, loggedIn[0].Value, loggedOut[0].Value)
	assert.NotContains(t, client.data, keyPrefix+loggedIn[0].Value)
	assert.Len(t, client.data, 1)

	old, err := store.Load(ctx, requestWith(loggedIn))
	require.NoError(t, err)
	assert.Empty(t, old.User)
}

func TestSessionStore_UnknownOrMalformedID(t *testing.T) {
	store := NewSessionStore(newFakeClient(), time.Hour, false)
	ctx := context.Background()

	data, err := store.Load(ctx, requestWith([]*http.Cookie{{Name: CookieName, Value: "3f2504e0-4f89-11d3-9a0c-0305e82c3301"}}))
	require.NoError(t, err)
	assert.True(t, data.Empty())

	data, err = store.Load(ctx, requestWith([]*http.Cookie{{Name: CookieName, Value: "../../etc"}}))
	require.NoError(t, err)
	assert.True(t, data.Empty())
}
