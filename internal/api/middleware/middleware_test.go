package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/moviereview/internal/api/session"
	"github.com/martijn/moviereview/internal/api/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*gin.Engine, *session.CookieStore) {
	t.Helper()

	tmpl, err := view.Load()
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	store := session.NewCookieStore("test-secret", time.Hour, false)
	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(RequestLogger(zap.NewNop()))
	router.Use(ErrorHandlerMiddleware(zap.NewNop()))
	router.Use(session.Middleware(store, zap.NewNop()))
	return router, store
}

func TestRequireLogin_RedirectsAnonymous(t *testing.T) {
	router, store := newTestRouter(t)
	router.GET("/private", RequireLogin(store, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, "secret")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "secret")

	// The notice travels in the session cookie
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	data, err := store.Load(req.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Please log in first"}, data.Flashes)
}

func TestRequireLogin_AllowsLoggedIn(t *testing.T) {
	router, store := newTestRouter(t)
	router.GET("/login-as-bob", func(c *gin.Context) {
		sess := session.FromContext(c)
		sess.User = "bob"
		require.NoError(t, store.Save(c.Request.Context(), c.Writer, c.Request, sess))
		c.Status(http.StatusNoContent)
	})
	router.GET("/private", RequireLogin(store, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, "hello "+session.CurrentUser(c))
	})

	login := httptest.NewRecorder()
	router.ServeHTTP(login, httptest.NewRequest(http.MethodGet, "/login-as-bob", nil))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello bob", w.Body.String())
}

func TestErrorHandler_RendersErrorPage(t *testing.T) {
	router, _ := newTestRouter(t)
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("store unavailable"))
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	for _, path := range []string{"/fail", "/panic"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Contains(t, w.Body.String(), "Something went wrong")
			assert.NotContains(t, w.Body.String(), "store unavailable")
		})
	}
}
