package bookings

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/api/respond"
	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/service/bookings"
	storeBookings "github.com/seniorstay/staycation-api/internal/store/bookings"
)

type Service interface {
	Create(ctx context.Context, userID *int64, req bookings.BookingRequest) (int64, error)
	Replace(ctx context.Context, id int64, userID *int64, req bookings.BookingRequest) error
	CheckOverlap(ctx context.Context, roomID int64, checkIn, checkOut string) ([]storeBookings.Stay, error)
	List(ctx context.Context) ([]*storeBookings.Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]*storeBookings.Booking, error)
	Get(ctx context.Context, id int64) (*storeBookings.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

type BookingsHandler struct {
	log   *zap.Logger
	svc   Service
	auth  *middleware.Auth
	limit gin.HandlerFunc
}

func NewBookingsHandler(log *zap.Logger, svc Service, auth *middleware.Auth) *BookingsHandler {
	return &BookingsHandler{log: log, svc: svc, auth: auth, limit: func(c *gin.Context) { c.Next() }}
}

// WithRateLimit runs limit after the optional token check on create and replace.
func (h *BookingsHandler) WithRateLimit(limit gin.HandlerFunc) *BookingsHandler {
	h.limit = limit
	return h
}

func (h *BookingsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/bookings")
	{
		g.GET("/overlap", h.overlap)
		g.GET("/me", h.auth.User(), h.listMine)
		g.POST("", h.auth.Optional(), h.limit, h.create)
		g.PUT("/:id", h.auth.Optional(), h.limit, h.replace)
	}

	admin := r.Group("/api/bookings")
	admin.Use(h.auth.Admin())
	{
		admin.GET("", h.list)
		admin.GET("/:id", h.get)
		admin.PATCH("/:id/status", h.updateStatus)
		admin.DELETE("/:id", h.delete)
	}
}

// writeError maps booking errors; transactional failures stay generic.
func (h *BookingsHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, bookings.ErrMissingField), errors.Is(err, bookings.ErrInvalidField):
		respond.BadRequest(c, err.Error())
	case errors.Is(err, storeBookings.ErrOverlap):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, storeBookings.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		respond.Error(c, h.log, err, "booking")
	}
}

// caller returns the authenticated user id on optional-auth routes.
func caller(c *gin.Context) *int64 {
	if uid, ok := middleware.UserID(c); ok {
		return &uid
	}
	return nil
}

func (h *BookingsHandler) create(c *gin.Context) {
	var req bookings.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	id, err := h.svc.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking_id": id, "message": "Booking created successfully"})
}

func (h *BookingsHandler) replace(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	var req bookings.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}

	if err := h.svc.Replace(c.Request.Context(), id, caller(c), req); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking_id": id, "message": "Booking updated successfully"})
}

func (h *BookingsHandler) overlap(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Query("room_id"), 10, 64)
	if err != nil {
		respond.BadRequest(c, "invalid room_id")
		return
	}
	stays, err := h.svc.CheckOverlap(c.Request.Context(), roomID, c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stays)
}

func (h *BookingsHandler) listMine(c *gin.Context) {
	uid, _ := middleware.UserID(c)
	list, err := h.svc.ListUserBookings(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BookingsHandler) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BookingsHandler) get(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	b, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingsHandler) updateStatus(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"booking_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "missing required field: booking_status")
		return
	}
	if err := h.svc.UpdateStatus(c.Request.Context(), id, body.Status); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking_id": id, "message": "Booking status updated"})
}

func (h *BookingsHandler) delete(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}
