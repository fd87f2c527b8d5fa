package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/api/respond"
	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/service/auth"
	usersService "github.com/seniorstay/staycation-api/internal/service/users"
	"github.com/seniorstay/staycation-api/internal/store/users"
)

type Service interface {
	List(ctx context.Context) ([]*users.User, error)
	Create(ctx context.Context, req usersService.CreateRequest) (*users.User, error)
	Get(ctx context.Context, id int64) (*users.User, error)
	Update(ctx context.Context, id int64, req usersService.UpdateRequest, asAdmin bool) error
	Delete(ctx context.Context, id int64) error
	Favourites(ctx context.Context, userID int64) ([]int64, error)
	AddFavourite(ctx context.Context, userID, roomID int64) ([]int64, error)
	RemoveFavourite(ctx context.Context, userID, roomID int64) ([]int64, error)
}

type UsersHandler struct {
	log   *zap.Logger
	svc   Service
	auth  *middleware.Auth
	limit gin.HandlerFunc
}

func NewUsersHandler(log *zap.Logger, svc Service, auth *middleware.Auth) *UsersHandler {
	return &UsersHandler{log: log, svc: svc, auth: auth, limit: func(c *gin.Context) { c.Next() }}
}

// WithRateLimit runs limit after authentication on the signed-in user routes.
func (h *UsersHandler) WithRateLimit(limit gin.HandlerFunc) *UsersHandler {
	h.limit = limit
	return h
}

func (h *UsersHandler) Register(r *gin.Engine) {
	r.GET("/api/users", h.auth.Admin(), h.list)
	r.POST("/api/users", h.auth.Admin(), h.create)

	g := r.Group("/api/users")
	g.Use(h.auth.User(), h.limit)
	{
		g.GET("/fav", h.favourites)
		g.POST("/fav", h.favourites)
		g.POST("/add", h.addFavourite)
		g.POST("/remove", h.removeFavourite)
		g.GET("/:id", h.get)
		g.PUT("/:id", h.update)
		g.DELETE("/:id", h.delete)
	}
}

// target resolves :id and allows only the caller or an admin through.
func (h *UsersHandler) target(c *gin.Context) (int64, bool) {
	id, ok := respond.ID(c)
	if !ok {
		return 0, false
	}
	uid, _ := middleware.UserID(c)
	if uid != id && !middleware.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to access this user"})
		return 0, false
	}
	return id, true
}

func (h *UsersHandler) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, h.log, err, "user")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *UsersHandler) create(c *gin.Context) {
	var req usersService.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "email, username and an 8 character password are required")
		return
	}
	u, err := h.svc.Create(c.Request.Context(), req)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, usersService.ErrInvalidRole):
		respond.BadRequest(c, err.Error())
	case err != nil:
		respond.Error(c, h.log, err, "user")
	default:
		c.JSON(http.StatusCreated, u)
	}
}

func (h *UsersHandler) get(c *gin.Context) {
	id, ok := h.target(c)
	if !ok {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, h.log, err, "user")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UsersHandler) update(c *gin.Context) {
	id, ok := h.target(c)
	if !ok {
		return
	}
	var req usersService.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}

	err := h.svc.Update(c.Request.Context(), id, req, middleware.IsAdmin(c))
	switch {
	case errors.Is(err, usersService.ErrRoleChange):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, usersService.ErrInvalidRole):
		respond.BadRequest(c, err.Error())
	case err != nil:
		respond.Error(c, h.log, err, "user")
	default:
		c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
	}
}

func (h *UsersHandler) delete(c *gin.Context) {
	id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, h.log, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *UsersHandler) favourites(c *gin.Context) {
	uid, _ := middleware.UserID(c)
	list, err := h.svc.Favourites(c.Request.Context(), uid)
	if err != nil {
		respond.Error(c, h.log, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favourites": list})
}

type favouriteRequest struct {
	RoomID int64 `json:"room_id" binding:"required"`
}

func (h *UsersHandler) addFavourite(c *gin.Context) {
	h.editFavourites(c, h.svc.AddFavourite)
}

func (h *UsersHandler) removeFavourite(c *gin.Context) {
	h.editFavourites(c, h.svc.RemoveFavourite)
}

func (h *UsersHandler) editFavourites(c *gin.Context, edit func(context.Context, int64, int64) ([]int64, error)) {
	var req favouriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "missing required field: room_id")
		return
	}
	uid, _ := middleware.UserID(c)
	list, err := edit(c.Request.Context(), uid, req.RoomID)
	if err != nil {
		if errors.Is(err, usersService.ErrInvalidRoom) {
			respond.BadRequest(c, err.Error())
			return
		}
		respond.Error(c, h.log, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favourites": list})
}
