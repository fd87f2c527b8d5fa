package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	kafkax "github.com/seniorstay/staycation-api/internal/kafka"
	"github.com/seniorstay/staycation-api/internal/metrics"
	mailerService "github.com/seniorstay/staycation-api/internal/service/mailer"
	"github.com/seniorstay/staycation-api/internal/store/bookings"
)

type BookingLookup interface {
	GetByID(ctx context.Context, id int64) (*bookings.Booking, error)
}

type Mailer interface {
	SendBookingConfirmationEmail(to string, d mailerService.BookingDetails) error
	SendBookingUpdatedEmail(to string, d mailerService.BookingDetails) error
	SendPaymentReceivedEmail(to string, d mailerService.BookingDetails) error
}

var ErrUnknownEvent = errors.New("unknown booking event type")

// NotifyService turns booking events into guest emails.
type NotifyService struct {
	log      *zap.Logger
	bookings BookingLookup
	mailer   Mailer
}

func NewNotifyService(log *zap.Logger, bookings BookingLookup, mailer Mailer) *NotifyService {
	return &NotifyService{log: log, bookings: bookings, mailer: mailer}
}

// HandleBookingEvent sends the email matching ev. Bookings made without an
// email address are skipped.
func (s *NotifyService) HandleBookingEvent(ctx context.Context, ev kafkax.BookingEvent) error {
	d := mailerService.BookingDetails{
		BookingID:  ev.BookingID,
		FirstName:  ev.FirstName,
		CheckIn:    ev.CheckIn,
		CheckOut:   ev.CheckOut,
		TotalPrice: ev.TotalPrice,
	}
	to := ev.Email

	var send func(string, mailerService.BookingDetails) error
	switch ev.Type {
	case kafkax.EventBookingCreated:
		send = s.mailer.SendBookingConfirmationEmail
	case kafkax.EventBookingUpdated:
		send = s.mailer.SendBookingUpdatedEmail
	case kafkax.EventBookingPaid:
		b, err := s.bookings.GetByID(ctx, ev.BookingID)
		if err != nil {
			s.log.Error("Failed to get booking", zap.Error(err), zap.Int64("booking_id", ev.BookingID))
			return err
		}
		d.FirstName = b.FirstName
		d.CheckIn = b.CheckInDate.String()
		d.CheckOut = b.CheckOutDate.String()
		if b.Email != nil {
			to = *b.Email
		}
		send = s.mailer.SendPaymentReceivedEmail
	default:
		metrics.NotificationsTotal.WithLabelValues("unknown").Inc()
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}

	if to == "" {
		s.log.Debug("booking has no email, skipping notification", zap.Int64("booking_id", ev.BookingID))
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		return nil
	}
	if err := send(to, d); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	return nil
}
