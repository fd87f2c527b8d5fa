package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	jwtMiddleware "github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/store"
	"github.com/seniorstay/staycation-api/internal/store/users"
)

type UserStore interface {
	Create(ctx context.Context, u *users.User) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

// Revoker blocks a token id until ttl elapses.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type AuthService struct {
	log     *zap.Logger
	users   UserStore
	revoker Revoker
	secret  string
	ttl     time.Duration
	cost    int
}

type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string      `json:"token"`
	User    *users.User `json:"user"`
	Expires time.Time   `json:"expires"`
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

// NewAuthService builds the service. revoker may be nil, in which case logout
// only clears the cookie.
func NewAuthService(log *zap.Logger, users UserStore, revoker Revoker, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		log:     log,
		users:   users,
		revoker: revoker,
		secret:  secret,
		ttl:     ttl,
		cost:    bcrypt.DefaultCost,
	}
}

func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	hash, err := HashPassword(req.Password, s.cost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &users.User{
		Email:        strings.TrimSpace(req.Email),
		Username:     req.Username,
		PasswordHash: hash,
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         jwtMiddleware.RoleUser,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *users.User) (*LoginResponse, error) {
	token, _, err := jwtMiddleware.Issue(s.secret, user.ID, user.Email, user.Role, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResponse{Token: token, User: user, Expires: time.Now().Add(s.ttl)}, nil
}

// Logout revokes the token id for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expires time.Time) error {
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, tokenID, time.Until(expires)); err != nil {
		s.log.Warn("token revocation failed", zap.String("jti", tokenID), zap.Error(err))
		return err
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*users.User, error) {
	return s.users.GetByID(ctx, userID)
}

// TTL is the lifetime of issued tokens.
func (s *AuthService) TTL() time.Duration { return s.ttl }
