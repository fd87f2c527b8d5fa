package bookings

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/dates"
	kafkax "github.com/seniorstay/staycation-api/internal/kafka"
	"github.com/seniorstay/staycation-api/internal/metrics"
	"github.com/seniorstay/staycation-api/internal/store"
	"github.com/seniorstay/staycation-api/internal/store/bookings"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, in bookings.Input, strict bool) (int64, error)
	Replace(ctx context.Context, id int64, in bookings.Input, strict bool) error
	Overlapping(ctx context.Context, roomID int64, checkIn, checkOut dates.Date) ([]bookings.Stay, error)
	List(ctx context.Context) ([]*bookings.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]*bookings.Booking, error)
	GetByID(ctx context.Context, id int64) (*bookings.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status bookings.Status) error
	Delete(ctx context.Context, id int64) error
}

type Publisher interface {
	PublishBookingEvent(ctx context.Context, ev kafkax.BookingEvent) error
}

const publishTimeout = 5 * time.Second

type BookingsService struct {
	log    *zap.Logger
	repo   Repository
	pub    Publisher
	strict bool
}

// NewBookingsService wires the booking service. pub may be nil when no broker
// is configured. strict enables the in-transaction overlap check.
func NewBookingsService(log *zap.Logger, repo Repository, pub Publisher, strict bool) *BookingsService {
	return &BookingsService{log: log, repo: repo, pub: pub, strict: strict}
}

func (s *BookingsService) Create(ctx context.Context, userID *int64, req BookingRequest) (int64, error) {
	in, err := req.Validate()
	if err != nil {
		metrics.BookingTransactionsTotal.WithLabelValues("create", "invalid").Inc()
		return 0, err
	}
	if in.Status == "" {
		in.Status = bookings.StatusPendingPayment
	}
	in.UserID = userID

	id, err := s.repo.Create(ctx, in, s.strict)
	if err != nil {
		metrics.BookingTransactionsTotal.WithLabelValues("create", outcome(err)).Inc()
		s.log.Error("booking create rolled back", zap.Int64("room_id", in.RoomID), zap.Error(err))
		return 0, err
	}
	metrics.BookingTransactionsTotal.WithLabelValues("create", "committed").Inc()
	s.publish(ctx, kafkax.EventBookingCreated, id, in)
	return id, nil
}

// Replace overwrites the booking and all of its service lines. A non-nil
// userID attaches the booking to that account.
func (s *BookingsService) Replace(ctx context.Context, id int64, userID *int64, req BookingRequest) error {
	in, err := req.Validate()
	if err != nil {
		metrics.BookingTransactionsTotal.WithLabelValues("update", "invalid").Inc()
		return err
	}
	in.UserID = userID

	if err := s.repo.Replace(ctx, id, in, s.strict); err != nil {
		metrics.BookingTransactionsTotal.WithLabelValues("update", outcome(err)).Inc()
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error("booking update rolled back", zap.Int64("booking_id", id), zap.Error(err))
		}
		return err
	}
	metrics.BookingTransactionsTotal.WithLabelValues("update", "committed").Inc()
	s.publish(ctx, kafkax.EventBookingUpdated, id, in)
	return nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, bookings.ErrOverlap):
		return "overlap"
	case errors.Is(err, store.ErrNotFound), errors.Is(err, bookings.ErrRoomNotFound):
		return "not_found"
	default:
		return "rolled_back"
	}
}

// publish runs after commit. Failures are logged only; the booking already exists.
func (s *BookingsService) publish(ctx context.Context, kind string, id int64, in bookings.Input) {
	if s.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := kafkax.BookingEvent{
		Type:       kind,
		BookingID:  id,
		RoomID:     in.RoomID,
		CheckIn:    in.CheckIn.String(),
		CheckOut:   in.CheckOut.String(),
		FirstName:  in.FirstName,
		TotalPrice: in.TotalPrice,
	}
	if in.Email != nil {
		ev.Email = *in.Email
	}
	if err := s.pub.PublishBookingEvent(ctx, ev); err != nil {
		s.log.Error("kafka publish error", zap.String("type", kind), zap.Int64("booking_id", id), zap.Error(err))
	}
}

// CheckOverlap lists the room's bookings intersecting [checkIn, checkOut].
func (s *BookingsService) CheckOverlap(ctx context.Context, roomID int64, checkIn, checkOut string) ([]bookings.Stay, error) {
	if roomID <= 0 {
		return nil, invalid("room_id")
	}
	in, err := dates.Parse(checkIn)
	if err != nil {
		return nil, invalid("check_in")
	}
	out, err := dates.Parse(checkOut)
	if err != nil {
		return nil, invalid("check_out")
	}
	return s.repo.Overlapping(ctx, roomID, in, out)
}

func (s *BookingsService) List(ctx context.Context) ([]*bookings.Booking, error) {
	return s.repo.List(ctx)
}

func (s *BookingsService) ListUserBookings(ctx context.Context, userID int64) ([]*bookings.Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *BookingsService) Get(ctx context.Context, id int64) (*bookings.Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *BookingsService) UpdateStatus(ctx context.Context, id int64, status string) error {
	st, ok := bookings.NormalizeStatus(status)
	if !ok {
		return invalid("booking_status")
	}
	return s.repo.UpdateStatus(ctx, id, st)
}

func (s *BookingsService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
