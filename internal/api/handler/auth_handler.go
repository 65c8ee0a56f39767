package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/martijn/moviereview/internal/api/dto"
	"github.com/martijn/moviereview/internal/api/session"
	"github.com/martijn/moviereview/internal/api/view"
	"github.com/martijn/moviereview/internal/core/service"
	"github.com/martijn/moviereview/internal/metrics"
)

const (
	msgUsernameTaken      = "Username already exists"
	msgRegistered         = "Registration Successful - Welcome!"
	msgBadCredentials     = "Incorrect Username and/or Password"
	msgLoggedOut          = "You have been logged out"
	msgCredentialsMissing = "Username and password are required"
)

type AuthHandler struct {
	authService *service.AuthService
	metrics     *metrics.Metrics
}

func NewAuthHandler(authService *service.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     m,
	}
}

// SignupPage handles GET /signup
func (h *AuthHandler) SignupPage(c *gin.Context) (*Response, error) {
	return render(view.Signup, gin.H{"Title": "Sign Up"}), nil
}

// Signup handles POST /signup
func (h *AuthHandler) Signup(c *gin.Context) (*Response, error) {
	var form dto.CredentialsForm
	if err := c.ShouldBind(&form); err != nil {
		h.metrics.AuthEvent("signup", "invalid")
		return redirect("/signup", msgCredentialsMissing), nil
	}

	user, err := h.authService.Signup(c.Request.Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, service.ErrDuplicateUser):
		h.metrics.AuthEvent("signup", "duplicate")
		return redirect("/signup", msgUsernameTaken), nil
	case errors.Is(err, service.ErrInvalidInput):
		h.metrics.AuthEvent("signup", "invalid")
		return redirect("/signup", inputMessage(err)), nil
	case err != nil:
		return nil, err
	}

	h.metrics.AuthEvent("signup", "success")
	session.FromContext(c).User = user.Username
	return redirect("/home", msgRegistered), nil
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) (*Response, error) {
	return render(view.Login, gin.H{"Title": "Log In"}), nil
}

// Login handles POST /login. Unknown users and wrong passwords get the
// same notice.
func (h *AuthHandler) Login(c *gin.Context) (*Response, error) {
	var form dto.CredentialsForm
	if err := c.ShouldBind(&form); err != nil {
		h.metrics.AuthEvent("login", "failure")
		return redirect("/login", msgBadCredentials), nil
	}

	user, err := h.authService.Login(c.Request.Context(), form.Username, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.metrics.AuthEvent("login", "failure")
		return redirect("/login", msgBadCredentials), nil
	}
	if err != nil {
		return nil, err
	}

	h.metrics.AuthEvent("login", "success")
	session.FromContext(c).User = user.Username
	return redirect("/home", fmt.Sprintf("Welcome, %s", form.Username)), nil
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(c *gin.Context) (*Response, error) {
	h.metrics.AuthEvent("logout", "success")
	session.FromContext(c).User = ""
	return redirect("/login", msgLoggedOut), nil
}
