package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/moviereview/internal/api/session"
)

// Response is what a page handler produces: either a view to render or a
// location to redirect to, plus any flash notices for the user.
type Response struct {
	Status   int
	View     string
	Data     gin.H
	Redirect string
	Flashes  []string
}

func render(view string, data gin.H, flashes ...string) *Response {
	return &Response{Status: http.StatusOK, View: view, Data: data, Flashes: flashes}
}

func redirect(location string, flashes ...string) *Response {
	return &Response{Redirect: location, Flashes: flashes}
}

// WithStatus overrides the HTTP status of a rendered view
func (r *Response) WithStatus(status int) *Response {
	r.Status = status
	return r
}

// PageFunc handles a request and describes the response
type PageFunc func(c *gin.Context) (*Response, error)

// Responder turns a Response into HTTP output. Flash notices attached to a
// redirect are parked in the session for the next page; notices attached
// to a rendered view are shown right away together with any parked ones.
type Responder struct {
	store session.Store
}

func NewResponder(store session.Store) *Responder {
	return &Responder{store: store}
}

func (r *Responder) Wrap(fn PageFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := fn(c)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if err := r.Write(c, resp); err != nil {
			_ = c.Error(err)
			c.Abort()
		}
	}
}

// Write saves the session and writes resp
func (r *Responder) Write(c *gin.Context, resp *Response) error {
	sess := session.FromContext(c)

	if resp.Redirect != "" {
		for _, msg := range resp.Flashes {
			sess.AddFlash(msg)
		}
		if err := r.store.Save(c.Request.Context(), c.Writer, c.Request, sess); err != nil {
			return err
		}
		c.Redirect(http.StatusFound, resp.Redirect)
		return nil
	}

	flashes := append(sess.PopFlashes(), resp.Flashes...)
	if err := r.store.Save(c.Request.Context(), c.Writer, c.Request, sess); err != nil {
		return err
	}

	data := gin.H{
		"Title":   "",
		"Query":   "",
		"User":    sess.User,
		"Flashes": flashes,
	}
	for k, v := range resp.Data {
		data[k] = v
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.HTML(status, resp.View, data)
	return nil
}
