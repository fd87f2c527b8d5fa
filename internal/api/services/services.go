package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/api/respond"
	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/store/services"
)

type Repository interface {
	List(ctx context.Context, includeInactive bool) ([]*services.Service, error)
	Get(ctx context.Context, id int64) (*services.Service, error)
	Create(ctx context.Context, in services.Input) (int64, error)
	Update(ctx context.Context, id int64, in services.Input) error
	Deactivate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type ServicesHandler struct {
	log  *zap.Logger
	repo Repository
	auth *middleware.Auth
}

func NewServicesHandler(log *zap.Logger, repo Repository, auth *middleware.Auth) *ServicesHandler {
	return &ServicesHandler{log: log, repo: repo, auth: auth}
}

func (h *ServicesHandler) Register(r *gin.Engine) {
	g := r.Group("/api/services")
	g.GET("", h.list)
	g.GET("/:id", h.get)

	admin := g.Group("")
	admin.Use(h.auth.Admin())
	{
		admin.POST("", h.create)
		admin.PUT("/:id", h.update)
		admin.PATCH("/:id/deactivate", h.deactivate)
		admin.DELETE("/:id", h.delete)
	}
}

func (h *ServicesHandler) list(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), c.Query("all") == "true")
	if err != nil {
		respond.Error(c, h.log, err, "service")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ServicesHandler) get(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	s, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, h.log, err, "service")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *ServicesHandler) create(c *gin.Context) {
	var in services.Input
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
		respond.Error(c, h.log, err, "service")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Service created successfully"})
}

func (h *ServicesHandler) update(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	var in services.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, in); err != nil {
		respond.Error(c, h.log, err, "service")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service updated successfully"})
}

func (h *ServicesHandler) deactivate(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		respond.Error(c, h.log, err, "service")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deactivated"})
}

func (h *ServicesHandler) delete(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	err := h.repo.Delete(c.Request.Context(), id)
	if errors.Is(err, services.ErrInUse) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respond.Error(c, h.log, err, "service")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
}
