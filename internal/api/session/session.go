// Package session tracks the logged-in user and pending flash notices
// between requests.
package session

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const contextKey = "session"

// Data is the per-client session state
type Data struct {
	User    string   `json:"user,omitempty"`
	Flashes []string `json:"flashes,omitempty"`

	// set by server-side stores for data they actually found
	id         string
	loadedUser string
}

// Loaded records that data was read from the backend under id
func Loaded(id string, data *Data) *Data {
	data.id = id
	data.loadedUser = data.User
	return data
}

// ID returns the backend id the data was loaded under, or "" for new data
func (d *Data) ID() string {
	return d.id
}

// UserChanged reports whether the user logged in or out since Load
func (d *Data) UserChanged() bool {
	return d.User != d.loadedUser
}

// Empty reports whether there is nothing worth persisting
func (d *Data) Empty() bool {
	return d.User == "" && len(d.Flashes) == 0
}

// AddFlash queues a notice for the next rendered page
func (d *Data) AddFlash(msg string) {
	d.Flashes = append(d.Flashes, msg)
}

// PopFlashes returns the queued notices and clears them
func (d *Data) PopFlashes() []string {
	flashes := d.Flashes
	d.Flashes = nil
	return flashes
}

// Store loads and persists session data for a request
type Store interface {
	Load(ctx context.Context, r *http.Request) (*Data, error)
	Save(ctx context.Context, w http.ResponseWriter, r *http.Request, data *Data) error
}

// Middleware loads the session into the gin context. A session that cannot
// be read (tampered, expired, backend miss) is replaced by an empty one.
func Middleware(store Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := store.Load(c.Request.Context(), c.Request)
		if err != nil {
			log.Debug("discarding unreadable session", zap.Error(err))
			data = &Data{}
		}
		c.Set(contextKey, data)
		c.Next()
	}
}

// FromContext returns the session attached by Middleware. It never returns nil.
func FromContext(c *gin.Context) *Data {
	if v, ok := c.Get(contextKey); ok {
		if data, ok := v.(*Data); ok {
			return data
		}
	}
	data := &Data{}
	c.Set(contextKey, data)
	return data
}

// CurrentUser returns the logged-in username or ""
func CurrentUser(c *gin.Context) string {
	return FromContext(c).User
}
