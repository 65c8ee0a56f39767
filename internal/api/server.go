package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/moviereview/internal/api/dto"
	"github.com/martijn/moviereview/internal/api/handler"
	"github.com/martijn/moviereview/internal/api/middleware"
	"github.com/martijn/moviereview/internal/api/session"
	"github.com/martijn/moviereview/internal/api/view"
	"github.com/martijn/moviereview/internal/core/service"
	"github.com/martijn/moviereview/internal/metrics"
	"github.com/martijn/moviereview/pkg/config"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	router *gin.Engine
	srv    *http.Server
	config *config.Config
	log    *zap.Logger
}

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	AuthService   *service.AuthService
	ReviewService *service.ReviewService
	Sessions      session.Store
	Store         Pinger
	Metrics       *metrics.Metrics
	Log           *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	router, err := NewRouter(cfg, deps)
	if err != nil {
		return nil, err
	}

	return &Server{
		router: router,
		config: cfg,
		log:    deps.Log,
	}, nil
}

// NewRouter builds the gin engine with every route registered
func NewRouter(cfg *config.Config, deps Deps) (*gin.Engine, error) {
	if !cfg.IsDevMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := view.Load()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	// Global middleware
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(deps.Metrics.Middleware())
	router.Use(middleware.ErrorHandlerMiddleware(deps.Log))
	router.Use(session.Middleware(deps.Sessions, deps.Log))

	respond := handler.NewResponder(deps.Sessions)
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Metrics)
	reviewHandler := handler.NewReviewHandler(deps.ReviewService, deps.Metrics)
	loginRequired := middleware.RequireLogin(deps.Sessions, deps.Log)

	// Public pages
	router.GET("/", respond.Wrap(reviewHandler.Home))
	router.GET("/home", respond.Wrap(reviewHandler.Home))
	router.GET("/movie_details/:id", respond.Wrap(reviewHandler.Details))
	router.POST("/movie_details/:id", respond.Wrap(reviewHandler.Details))
	router.GET("/search_movie", respond.Wrap(reviewHandler.Search))
	router.POST("/search_movie", respond.Wrap(reviewHandler.Search))

	// Authentication
	router.GET("/signup", respond.Wrap(authHandler.SignupPage))
	router.POST("/signup", respond.Wrap(authHandler.Signup))
	router.GET("/login", respond.Wrap(authHandler.LoginPage))
	router.POST("/login", respond.Wrap(authHandler.Login))
	router.GET("/logout", respond.Wrap(authHandler.Logout))

	// Review mutations (login required, ownership checked by the service)
	reviews := router.Group("/")
	reviews.Use(loginRequired)
	{
		reviews.GET("/new_reviews", respond.Wrap(reviewHandler.NewReviewPage))
		reviews.POST("/new_reviews", respond.Wrap(reviewHandler.CreateReview))
		reviews.GET("/edit_review/:id", respond.Wrap(reviewHandler.EditReviewPage))
		reviews.POST("/edit_review/:id", respond.Wrap(reviewHandler.UpdateReview))
		reviews.GET("/delete_review/:id", respond.Wrap(reviewHandler.DeleteReview))
		reviews.POST("/delete_review/:id", respond.Wrap(reviewHandler.DeleteReview))
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		resp := dto.HealthResponse{
			Status: "ok",
			Store:  "ok",
			Time:   time.Now().Format(time.RFC3339),
		}
		status := http.StatusOK

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := deps.Store.Ping(ctx); err != nil {
			deps.Log.Warn("store ping failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Store = "unreachable"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, resp)
	})

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	return router, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := s.config.Addr()

	s.srv = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	s.log.Info("starting HTTP server", zap.String("addr", addr))
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
