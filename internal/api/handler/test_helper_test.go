package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/moviereview/internal/api/middleware"
	"github.com/martijn/moviereview/internal/api/session"
	"github.com/martijn/moviereview/internal/api/view"
	"github.com/martijn/moviereview/internal/core/domain"
	"github.com/martijn/moviereview/internal/core/service"
	"github.com/martijn/moviereview/internal/infrastructure/sqlite"
	"github.com/martijn/moviereview/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// testEnv holds all test dependencies
type testEnv struct {
	db            *sqlite.DB
	router        *gin.Engine
	authService   *service.AuthService
	reviewService *service.ReviewService
}

// setupTestEnv creates a test environment with in-memory SQLite database
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Use in-memory SQLite database
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zap.NewNop()
	m := metrics.New()
	store := session.NewCookieStore("test-secret", time.Hour, false)

	authService := service.NewAuthService(sqlite.NewUserRepository(db), log).WithCost(bcrypt.MinCost)
	reviewService := service.NewReviewService(sqlite.NewReviewRepository(db), log)

	tmpl, err := view.Load()
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	// Setup gin router in test mode
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(session.Middleware(store, log))

	respond := NewResponder(store)
	authHandler := NewAuthHandler(authService, m)
	reviewHandler := NewReviewHandler(reviewService, m)

	router.GET("/home", respond.Wrap(reviewHandler.Home))
	router.GET("/movie_details/:id", respond.Wrap(reviewHandler.Details))
	router.POST("/search_movie", respond.Wrap(reviewHandler.Search))
	router.GET("/search_movie", respond.Wrap(reviewHandler.Search))
	router.GET("/signup", respond.Wrap(authHandler.SignupPage))
	router.POST("/signup", respond.Wrap(authHandler.Signup))
	router.GET("/login", respond.Wrap(authHandler.LoginPage))
	router.POST("/login", respond.Wrap(authHandler.Login))
	router.GET("/logout", respond.Wrap(authHandler.Logout))

	protected := router.Group("/", middleware.RequireLogin(store, log))
	protected.GET("/new_reviews", respond.Wrap(reviewHandler.NewReviewPage))
	protected.POST("/new_reviews", respond.Wrap(reviewHandler.CreateReview))
	protected.GET("/edit_review/:id", respond.Wrap(reviewHandler.EditReviewPage))
	protected.POST("/edit_review/:id", respond.Wrap(reviewHandler.UpdateReview))
	protected.GET("/delete_review/:id", respond.Wrap(reviewHandler.DeleteReview))

	return &testEnv{
		db:            db,
		router:        router,
		authService:   authService,
		reviewService: reviewService,
	}
}

// client is a browser stand-in that carries cookies between requests
type client struct {
	t       *testing.T
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (env *testEnv) newClient(t *testing.T) *client {
	return &client{t: t, env: env, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()

	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.env.router.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return w
}

// get performs a GET request and returns the response
func (c *client) get(path string) *httptest.ResponseRecorder {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		c.t.Fatalf("failed to create request: %v", err)
	}
	return c.do(req)
}

// post submits an url-encoded form
func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		c.t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// follow performs the GET a browser would issue after a redirect
func (c *client) follow(w *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	c.t.Helper()

	if w.Code != http.StatusFound {
		c.t.Fatalf("expected redirect, got %d\nBody: %s", w.Code, w.Body.String())
	}
	return c.get(w.Header().Get("Location"))
}

// signup registers and logs in a user through the signup form
func (c *client) signup(username, password string) {
	c.t.Helper()

	w := c.post("/signup", url.Values{"username": {username}, "password": {password}})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/home" {
		c.t.Fatalf("signup %s failed: %d %s", username, w.Code, w.Header().Get("Location"))
	}
	c.follow(w)
}

// seedReview stores a review directly through the service
func (env *testEnv) seedReview(t *testing.T, title, author string) *domain.Review {
	t.Helper()

	review, err := env.reviewService.Create(context.Background(), domain.ReviewFields{
		MovieTitle:   title,
		YearReleased: 2021,
		Director:     "Denis Villeneuve",
		RunTime:      155,
		Genre:        "Sci-Fi",
		Description:  "Spice must flow",
		UserRating:   8,
	}, author)
	if err != nil {
		t.Fatalf("failed to seed review %s: %v", title, err)
	}
	return review
}

func reviewForm(title string) url.Values {
	return url.Values{
		"movie_title":   {title},
		"year_released": {"2021"},
		"director":      {"Denis Villeneuve"},
		"age_rating":    {"PG-13"},
		"run_time":      {"155"},
		"genre":         {"Sci-Fi"},
		"description":   {"Spice must flow"},
		"user_rating":   {"9"},
		"image":         {""},
	}
}
