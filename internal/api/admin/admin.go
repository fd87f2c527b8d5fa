package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/api/respond"
	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/service/admin"
)

type DashboardBuilder interface {
	Build(ctx context.Context, p admin.Params) (*admin.Dashboard, error)
}

type AdminHandler struct {
	log  *zap.Logger
	svc  DashboardBuilder
	auth *middleware.Auth
}

func NewAdminHandler(log *zap.Logger, svc DashboardBuilder, auth *middleware.Auth) *AdminHandler {
	return &AdminHandler{log: log, svc: svc, auth: auth}
}

func (h *AdminHandler) Register(r *gin.Engine) {
	g := r.Group("/api/admin")
	g.Use(h.auth.Admin())
	{
		g.GET("/dashboard", h.dashboard)
	}
}

func (h *AdminHandler) dashboard(c *gin.Context) {
	d, err := h.svc.Build(c.Request.Context(), admin.Params{
		OccupancyDate: c.Query("occupancyDate"),
		HotelFilter:   c.Query("hotelFilter"),
		StateFilter:   c.Query("stateFilter"),
	})
	if err != nil {
		if errors.Is(err, admin.ErrInvalidFilter) {
			respond.BadRequest(c, err.Error())
			return
		}
		h.log.Error("dashboard failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}
	c.JSON(http.StatusOK, d)
}
