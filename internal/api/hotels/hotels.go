package hotels

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/api/respond"
	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/store/hotels"
)

type Repository interface {
	List(ctx context.Context, f hotels.Filter) ([]*hotels.Hotel, error)
	Get(ctx context.Context, id int64) (*hotels.Hotel, error)
	Create(ctx context.Context, in hotels.Input) (int64, error)
	Update(ctx context.Context, id int64, in hotels.Input) error
	Delete(ctx context.Context, id int64) error
}

type HotelsHandler struct {
	log  *zap.Logger
	repo Repository
	auth *middleware.Auth
}

func NewHotelsHandler(log *zap.Logger, repo Repository, auth *middleware.Auth) *HotelsHandler {
	return &HotelsHandler{log: log, repo: repo, auth: auth}
}

func (h *HotelsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/hotels")
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

func (h *HotelsHandler) list(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), hotels.Filter{
		Q:     c.Query("q"),
		State: c.Query("state"),
	})
	if err != nil {
		respond.Error(c, h.log, err, "hotel")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *HotelsHandler) get(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	hotel, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, h.log, err, "hotel")
		return
	}
	c.JSON(http.StatusOK, hotel)
}

func (h *HotelsHandler) create(c *gin.Context) {
	var in hotels.Input
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
		respond.Error(c, h.log, err, "hotel")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Hotel created successfully"})
}

func (h *HotelsHandler) update(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	var in hotels.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, in); err != nil {
		respond.Error(c, h.log, err, "hotel")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hotel updated successfully"})
}

func (h *HotelsHandler) delete(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, h.log, err, "hotel")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hotel deleted"})
}
