package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/martijn/moviereview/internal/core/domain"
	"github.com/martijn/moviereview/internal/core/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost = 10

	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes and newer versions reject it
	MaxPasswordBytes = 72
)

type AuthService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
	cost     int
}

func NewAuthService(userRepo repository.UserRepository, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		log:      log,
		cost:     BcryptCost,
	}
}

// WithCost overrides the bcrypt cost. Only meant for tests.
func (s *AuthService) WithCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Signup registers a new user. The username is stored lowercased.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hashed, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(username, hashed)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("username", user.Username))
	return user, nil
}

// Login checks the credentials and returns the stored user
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Debug("login for unknown user", zap.String("username", username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.VerifyPassword(password, user.Password) {
		s.log.Debug("login with wrong password", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword replaces the password hash of an existing user
func (s *AuthService) ChangePassword(ctx context.Context, username, password string) error {
	if err := checkPassword(password); err != nil {
		return err
	}

	user, err := s.userRepo.FindByUsername(ctx, domain.NormalizeUsername(username))
	if err != nil {
		return err
	}

	hashed, err := s.HashPassword(password)
	if err != nil {
		return err
	}

	user.Password = hashed
	user.UpdatedAt = time.Now().UTC()
	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) DeleteUser(ctx context.Context, username string) error {
	return s.userRepo.Delete(ctx, domain.NormalizeUsername(username))
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password is too long", ErrInvalidInput)
	}
	return nil
}
