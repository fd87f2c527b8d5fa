package payments

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/store"
	"github.com/seniorstay/staycation-api/internal/store/bookings"
)

var (
	ErrInvalidAmount  = errors.New("amount must be greater than zero")
	ErrRefundSettled  = errors.New("refund has already been settled")
	ErrInvalidOutcome = errors.New("refund status must be approved or rejected")
)

type Payment struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method"`
	PaymentDate time.Time `json:"payment_date"`
	Reference   *string   `json:"reference"`
}

// Receipt reports the payment and whether it settled the booking.
type Receipt struct {
	Payment       *Payment `json:"payment"`
	TotalPaid     float64  `json:"total_paid"`
	BookingStatus string   `json:"booking_status"`
	// Completed is set when this payment moved the booking to Complete.
	Completed bool `json:"completed"`
}

const (
	RefundPending  = "pending"
	RefundApproved = "approved"
	RefundRejected = "rejected"
)

type Refund struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	Amount    float64   `json:"amount"`
	Reason    *string   `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type PaymentsRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewPaymentsRepository(db *store.DB, log *zap.Logger) *PaymentsRepository {
	return &PaymentsRepository{db: db, log: log}
}

// Record inserts a payment. Once the booking's payments cover its total
// price a pending booking becomes Complete in the same transaction.
func (r *PaymentsRepository) Record(ctx context.Context, p Payment) (*Receipt, error) {
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now()
	}

	receipt := &Receipt{Payment: &p}
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var total float64
		var status string
		err := tx.QueryRow(ctx, `SELECT total_price::float8, booking_status FROM bookings WHERE id = $1 FOR UPDATE`, p.BookingID).
			Scan(&total, &status)
		if err != nil {
			return store.MapError(err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO payments (booking_id, amount, method, payment_date, reference)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`, p.BookingID, p.Amount, p.Method, p.PaymentDate, p.Reference,
		).Scan(&p.ID)
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0)::float8 FROM payments WHERE booking_id = $1`, p.BookingID).
			Scan(&receipt.TotalPaid); err != nil {
			return err
		}

		if receipt.TotalPaid >= total && status == string(bookings.StatusPendingPayment) {
			status = string(bookings.StatusComplete)
			if _, err := tx.Exec(ctx, `UPDATE bookings SET booking_status = $1 WHERE id = $2`, status, p.BookingID); err != nil {
				return err
			}
			receipt.Completed = true
		}
		receipt.BookingStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

const selectPaymentSQL = `SELECT id, booking_id, amount::float8, method, payment_date, reference FROM payments`

func (r *PaymentsRepository) queryPayments(ctx context.Context, sql string, args ...any) ([]*Payment, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*Payment{}
	for rows.Next() {
		p := &Payment{}
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Amount, &p.Method, &p.PaymentDate, &p.Reference); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PaymentsRepository) List(ctx context.Context) ([]*Payment, error) {
	return r.queryPayments(ctx, selectPaymentSQL+` ORDER BY payment_date DESC`)
}

func (r *PaymentsRepository) ListByBooking(ctx context.Context, bookingID int64) ([]*Payment, error) {
	return r.queryPayments(ctx, selectPaymentSQL+` WHERE booking_id = $1 ORDER BY payment_date ASC`, bookingID)
}

func (r *PaymentsRepository) CreateRefund(ctx context.Context, rf Refund) (*Refund, error) {
	if rf.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	rf.Status = RefundPending
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO refunds (booking_id, amount, reason, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, rf.BookingID, rf.Amount, rf.Reason, rf.Status,
	).Scan(&rf.ID, &rf.CreatedAt)
	if err != nil {
		return nil, store.MapError(err)
	}
	return &rf, nil
}

func (r *PaymentsRepository) ListRefunds(ctx context.Context) ([]*Refund, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, booking_id, amount::float8, reason, status, created_at
		FROM refunds
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*Refund{}
	for rows.Next() {
		rf := &Refund{}
		if err := rows.Scan(&rf.ID, &rf.BookingID, &rf.Amount, &rf.Reason, &rf.Status, &rf.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rf)
	}
	return list, rows.Err()
}

// SettleRefund moves a pending refund to approved or rejected. Settled
// refunds cannot change again.
func (r *PaymentsRepository) SettleRefund(ctx context.Context, id int64, status string) error {
	if status != RefundApproved && status != RefundRejected {
		return ErrInvalidOutcome
	}
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var current string
		if err := tx.QueryRow(ctx, `SELECT status FROM refunds WHERE id = $1 FOR UPDATE`, id).Scan(&current); err != nil {
			return store.MapError(err)
		}
		if current != RefundPending {
			return ErrRefundSettled
		}
		_, err := tx.Exec(ctx, `UPDATE refunds SET status = $1 WHERE id = $2`, status, id)
		return err
	})
}
