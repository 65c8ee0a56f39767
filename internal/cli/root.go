package cli

import (
	"context"
	"fmt"

	"github.com/martijn/moviereview/internal/api/session"
	"github.com/martijn/moviereview/internal/core/repository"
	"github.com/martijn/moviereview/internal/core/service"
	"github.com/martijn/moviereview/internal/infrastructure/mongodb"
	"github.com/martijn/moviereview/internal/infrastructure/redis"
	"github.com/martijn/moviereview/internal/infrastructure/sqlite"
	"github.com/martijn/moviereview/internal/logger"
	"github.com/martijn/moviereview/internal/metrics"
	"github.com/martijn/moviereview/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "moviereview",
	Short: "Movie review web application",
	Long: `moviereview is a small web application for sharing movie reviews.

It provides:
- Sign up, log in and log out with bcrypt-hashed passwords
- Creating, editing and deleting your own reviews
- Full text search over titles, directors, genres and descriptions
- MongoDB or embedded SQLite storage
- Cookie or Redis backed sessions`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is "+config.DefaultConfigPath+")")
}

// store is the document store backend behind the repositories
type store interface {
	Ping(ctx context.Context) error
}

// Services holds all initialized services
type Services struct {
	Log           *zap.Logger
	Metrics       *metrics.Metrics
	Store         store
	UserRepo      repository.UserRepository
	ReviewRepo    repository.ReviewRepository
	AuthService   *service.AuthService
	ReviewService *service.ReviewService
	Sessions      session.Store

	closers []func(ctx context.Context) error
}

// initServices connects the configured backends and builds the services
func initServices(ctx context.Context) (*Services, error) {
	log, err := logger.New(cfg.LogLevel, cfg.IsDevMode())
	if err != nil {
		return nil, err
	}

	s := &Services{
		Log:     log,
		Metrics: metrics.New(),
	}

	if err := s.initStore(ctx); err != nil {
		s.Close()
		return nil, err
	}

	if err := s.initSessions(ctx); err != nil {
		s.Close()
		return nil, err
	}

	s.AuthService = service.NewAuthService(s.UserRepo, log)
	s.ReviewService = service.NewReviewService(s.ReviewRepo, log)

	return s, nil
}

func (s *Services) initStore(ctx context.Context) error {
	switch cfg.Store {
	case "sqlite":
		db, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		s.closers = append(s.closers, func(context.Context) error { return db.Close() })
		s.Store = db
		s.UserRepo = sqlite.NewUserRepository(db)
		s.ReviewRepo = sqlite.NewReviewRepository(db)
		s.Log.Info("using sqlite store", zap.String("path", cfg.SQLitePath))
	default:
		db, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		s.Store = db
		s.UserRepo = mongodb.NewUserRepository(db)
		s.ReviewRepo = mongodb.NewReviewRepository(db)
		s.Log.Info("using mongodb store", zap.String("database", cfg.MongoDBName))
	}
	return nil
}

func (s *Services) initSessions(ctx context.Context) error {
	switch cfg.SessionStore {
	case "redis":
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
		s.Sessions = redis.NewSessionStore(client, cfg.SessionTTL, cfg.CookieSecure)
		s.Log.Info("using redis sessions", zap.String("addr", client.Options().Addr))
	default:
		s.Sessions = session.NewCookieStore(cfg.SecretKey, cfg.SessionTTL, cfg.CookieSecure)
	}
	return nil
}

// Close closes all resources
func (s *Services) Close() {
	ctx := context.Background()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && s.Log != nil {
			s.Log.Warn("failed to close resource", zap.Error(err))
		}
	}
	s.closers = nil
	if s.Log != nil {
		_ = s.Log.Sync()
	}
}
