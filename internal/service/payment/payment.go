package payment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	kafkax "github.com/seniorstay/staycation-api/internal/kafka"
	"github.com/seniorstay/staycation-api/internal/store"
	"github.com/seniorstay/staycation-api/internal/store/payments"
)

type Repository interface {
	Record(ctx context.Context, p payments.Payment) (*payments.Receipt, error)
	List(ctx context.Context) ([]*payments.Payment, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]*payments.Payment, error)
	CreateRefund(ctx context.Context, rf payments.Refund) (*payments.Refund, error)
	ListRefunds(ctx context.Context) ([]*payments.Refund, error)
	SettleRefund(ctx context.Context, id int64, status string) error
}

type Publisher interface {
	PublishBookingEvent(ctx context.Context, ev kafkax.BookingEvent) error
}

type PaymentRequest struct {
	BookingID int64   `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference *string `json:"reference"`
}

type RefundRequest struct {
	BookingID int64   `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Reason    *string `json:"reason"`
}

var ErrInvalidBooking = errors.New("invalid booking_id")

const publishTimeout = 5 * time.Second

type PaymentService struct {
	log  *zap.Logger
	repo Repository
	pub  Publisher
}

// NewPaymentService builds the service. pub may be nil when Kafka is not configured.
func NewPaymentService(log *zap.Logger, repo Repository, pub Publisher) *PaymentService {
	return &PaymentService{log: log, repo: repo, pub: pub}
}

// RecordPayment stores a payment and announces the booking once it is fully paid.
func (s *PaymentService) RecordPayment(ctx context.Context, req PaymentRequest) (*payments.Receipt, error) {
	if req.BookingID <= 0 {
		return nil, ErrInvalidBooking
	}
	if req.Method == "" {
		return nil, store.MissingField("method")
	}
	receipt, err := s.repo.Record(ctx, payments.Payment{
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.Int64("booking_id", req.BookingID),
		zap.Float64("amount", req.Amount),
		zap.Float64("total_paid", receipt.TotalPaid),
	)
	if receipt.Completed && s.pub != nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		ev := kafkax.BookingEvent{Type: kafkax.EventBookingPaid, BookingID: req.BookingID, TotalPrice: receipt.TotalPaid}
		if err := s.pub.PublishBookingEvent(pctx, ev); err != nil {
			s.log.Error("kafka publish error", zap.String("type", ev.Type), zap.Int64("booking_id", req.BookingID), zap.Error(err))
		}
	}
	return receipt, nil
}

func (s *PaymentService) ListPayments(ctx context.Context) ([]*payments.Payment, error) {
	return s.repo.List(ctx)
}

func (s *PaymentService) BookingPayments(ctx context.Context, bookingID int64) ([]*payments.Payment, error) {
	return s.repo.ListByBooking(ctx, bookingID)
}

func (s *PaymentService) RequestRefund(ctx context.Context, req RefundRequest) (*payments.Refund, error) {
	if req.BookingID <= 0 {
		return nil, ErrInvalidBooking
	}
	return s.repo.CreateRefund(ctx, payments.Refund{
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
}

func (s *PaymentService) ListRefunds(ctx context.Context) ([]*payments.Refund, error) {
	return s.repo.ListRefunds(ctx)
}

func (s *PaymentService) SettleRefund(ctx context.Context, id int64, status string) error {
	if err := s.repo.SettleRefund(ctx, id, status); err != nil {
		return err
	}
	s.log.Info("refund settled", zap.Int64("refund_id", id), zap.String("status", status))
	return nil
}
