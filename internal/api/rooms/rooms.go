package rooms

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/api/respond"
	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/store/rooms"
)

type Repository interface {
	List(ctx context.Context, f rooms.Filter) ([]*rooms.Room, error)
	Get(ctx context.Context, id int64) (*rooms.Room, error)
	Create(ctx context.Context, in rooms.Input) (int64, error)
	Update(ctx context.Context, id int64, in rooms.Input) error
	Delete(ctx context.Context, id int64) error
}

type RoomsHandler struct {
	log  *zap.Logger
	repo Repository
	auth *middleware.Auth
}

func NewRoomsHandler(log *zap.Logger, repo Repository, auth *middleware.Auth) *RoomsHandler {
	return &RoomsHandler{log: log, repo: repo, auth: auth}
}

func (h *RoomsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/rooms")
	g.GET("", h.list)
	g.GET("/:id", h.get)

	admin := g.Group("")
	admin.Use(h.auth.Admin())
	{
		admin.POST("", h.create)
		admin.PUT("/:id", h.update)
		admin.DELETE("/:id", h.delete)
	}
}

// parseFilter reads ?hotel_id&category&q&guests. Empty values are ignored.
func parseFilter(c *gin.Context) (rooms.Filter, error) {
	f := rooms.Filter{Category: c.Query("category"), Q: c.Query("q")}
	if v := c.Query("hotel_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, errors.New("invalid hotel_id")
		}
		f.HotelID = id
	}
	if v := c.Query("guests"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("invalid guests")
		}
		f.Guests = n
	}
	if f.Category != "" && !rooms.ValidCategory(f.Category) {
		return f, rooms.ErrInvalidCategory
	}
	return f, nil
}

func (h *RoomsHandler) list(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	list, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, h.log, err, "room")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *RoomsHandler) get(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	room, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, h.log, err, "room")
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *RoomsHandler) create(c *gin.Context) {
	var in rooms.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	id, err := h.repo.Create(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, h.log, err, "room")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Room created successfully"})
}

func (h *RoomsHandler) update(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	var in rooms.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	if err := in.ValidateCategory(); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, in); err != nil {
		respond.Error(c, h.log, err, "room")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room updated successfully"})
}

func (h *RoomsHandler) delete(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, h.log, err, "room")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}
