package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/api/respond"
	authMiddleware "github.com/seniorstay/staycation-api/internal/middleware"
	authService "github.com/seniorstay/staycation-api/internal/service/auth"
	"github.com/seniorstay/staycation-api/internal/store/users"
)

type Service interface {
	Register(ctx context.Context, req authService.RegisterRequest) (*authService.LoginResponse, error)
	Login(ctx context.Context, req authService.LoginRequest) (*authService.LoginResponse, error)
	Logout(ctx context.Context, tokenID string, expires time.Time) error
	Profile(ctx context.Context, userID int64) (*users.User, error)
	TTL() time.Duration
}

type AuthHandler struct {
	log          *zap.Logger
	svc          Service
	auth         *authMiddleware.Auth
	cookieSecure bool
}

func NewAuthHandler(log *zap.Logger, svc Service, auth *authMiddleware.Auth, cookieSecure bool) *AuthHandler {
	return &AuthHandler{log: log, svc: svc, auth: auth, cookieSecure: cookieSecure}
}

func (h *AuthHandler) Register(r *gin.Engine) {
	g := r.Group("/api/auth")
	{
		g.POST("/register", h.register)
		g.POST("/login", h.login)
		g.POST("/logout", h.auth.User(), h.logout)
		g.GET("/me", h.auth.User(), h.me)
	}
}

func (h *AuthHandler) setToken(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authMiddleware.TokenCookie, token, maxAge, "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req authService.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, authService.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}
		h.log.Error("Register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.setToken(c, resp.Token, int(h.svc.TTL().Seconds()))
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req authService.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, authService.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.log.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.setToken(c, resp.Token, int(h.svc.TTL().Seconds()))
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) logout(c *gin.Context) {
	// The cookie is cleared even if revocation fails; the token then lives until expiry.
	_ = h.svc.Logout(c.Request.Context(), authMiddleware.TokenID(c), authMiddleware.TokenExpiry(c))
	h.setToken(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) me(c *gin.Context) {
	uid, _ := authMiddleware.UserID(c)
	user, err := h.svc.Profile(c.Request.Context(), uid)
	if err != nil {
		respond.Error(c, h.log, err, "user")
		return
	}
	c.JSON(http.StatusOK, user)
}
