package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/api/respond"
	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/service/payment"
	"github.com/seniorstay/staycation-api/internal/store/payments"
)

type Service interface {
	RecordPayment(ctx context.Context, req payment.PaymentRequest) (*payments.Receipt, error)
	ListPayments(ctx context.Context) ([]*payments.Payment, error)
	BookingPayments(ctx context.Context, bookingID int64) ([]*payments.Payment, error)
	RequestRefund(ctx context.Context, req payment.RefundRequest) (*payments.Refund, error)
	ListRefunds(ctx context.Context) ([]*payments.Refund, error)
	SettleRefund(ctx context.Context, id int64, status string) error
}

type PaymentHandler struct {
	log  *zap.Logger
	svc  Service
	auth *middleware.Auth
}

func NewPaymentHandler(log *zap.Logger, svc Service, auth *middleware.Auth) *PaymentHandler {
	return &PaymentHandler{log: log, svc: svc, auth: auth}
}

func (h *PaymentHandler) Register(r *gin.Engine) {
	p := r.Group("/api/payments")
	p.Use(h.auth.Admin())
	{
		p.GET("", h.listPayments)
		p.POST("", h.recordPayment)
		p.GET("/booking/:id", h.bookingPayments)
	}

	rf := r.Group("/api/refunds")
	rf.Use(h.auth.Admin())
	{
		rf.GET("", h.listRefunds)
		rf.POST("", h.requestRefund)
		rf.PATCH("/:id/status", h.settleRefund)
	}
}

func (h *PaymentHandler) writeError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, payment.ErrInvalidBooking),
		errors.Is(err, payments.ErrInvalidAmount),
		errors.Is(err, payments.ErrInvalidOutcome):
		respond.BadRequest(c, err.Error())
	case errors.Is(err, payments.ErrRefundSettled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		respond.Error(c, h.log, err, what)
	}
}

func (h *PaymentHandler) listPayments(c *gin.Context) {
	list, err := h.svc.ListPayments(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "payment")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PaymentHandler) recordPayment(c *gin.Context) {
	var req payment.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	receipt, err := h.svc.RecordPayment(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "booking")
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h *PaymentHandler) bookingPayments(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	list, err := h.svc.BookingPayments(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "payment")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PaymentHandler) listRefunds(c *gin.Context) {
	list, err := h.svc.ListRefunds(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "refund")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PaymentHandler) requestRefund(c *gin.Context) {
	var req payment.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	rf, err := h.svc.RequestRefund(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "booking")
		return
	}
	c.JSON(http.StatusCreated, rf)
}

func (h *PaymentHandler) settleRefund(c *gin.Context) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	if err := h.svc.SettleRefund(c.Request.Context(), id, body.Status); err != nil {
		h.writeError(c, err, "refund")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Refund " + body.Status})
}
