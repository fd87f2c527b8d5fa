package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// TokenCookie is the cookie set at login.
	TokenCookie = "token"
)

type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RevocationChecker reports whether a token id was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RoleLookup reads the user's current role from storage.
type RoleLookup interface {
	Role(ctx context.Context, userID int64) (string, error)
}

type Auth struct {
	secret  string
	revoked RevocationChecker
	roles   RoleLookup
	log     *zap.Logger
}

// NewAuth builds the JWT middleware set. revoked and roles may be nil.
func NewAuth(secret string, revoked RevocationChecker, roles RoleLookup, log *zap.Logger) *Auth {
	return &Auth{secret: secret, revoked: revoked, roles: roles, log: log}
}

var errNoToken = errors.New("missing token")

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if v, err := c.Cookie(TokenCookie); err == nil {
		return v
	}
	return ""
}

func (a *Auth) parse(c *gin.Context) (*Claims, error) {
	tokenStr := tokenFrom(c)
	if tokenStr == "" {
		return nil, errNoToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(a.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims := token.Claims.(*Claims)

	if a.revoked != nil {
		revoked, err := a.revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// Redis unavailable: accept the signature check alone.
			a.log.Warn("token revocation lookup failed", zap.Error(err))
		} else if revoked {
			return nil, errors.New("token revoked")
		}
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set("uid", claims.UserID)
	c.Set("role", claims.Role)
	c.Set("jti", claims.ID)
	if claims.ExpiresAt != nil {
		c.Set("exp", claims.ExpiresAt.Time)
	}
}

// Middleware rejects requests without a valid token with 401. With
// requireAdmin, non-admins get 403 and the role is re-checked in storage.
func (a *Auth) Middleware(requireAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.parse(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		if requireAdmin {
			if claims.Role != RoleAdmin {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin required"})
				return
			}
			if a.roles != nil {
				role, err := a.roles.Role(c.Request.Context(), claims.UserID)
				if err != nil || role != RoleAdmin {
					c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privileges revoked"})
					return
				}
			}
		}

		setClaims(c, claims)
		c.Next()
	}
}

func (a *Auth) User() gin.HandlerFunc  { return a.Middleware(false) }
func (a *Auth) Admin() gin.HandlerFunc { return a.Middleware(true) }

// Optional attaches the caller identity when a valid token is present and
// otherwise lets the request through anonymously.
func (a *Auth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := a.parse(c); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// UserID returns the authenticated caller, if any.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get("uid")
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString("role") == RoleAdmin
}

func TokenID(c *gin.Context) string { return c.GetString("jti") }

func TokenExpiry(c *gin.Context) time.Time { return c.GetTime("exp") }

// Issue signs a token for the user and returns it with its id.
func Issue(secret string, userID int64, email, role string, ttl time.Duration) (string, string, error) {
	jti := uuid.NewString()
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, jti, err
}
