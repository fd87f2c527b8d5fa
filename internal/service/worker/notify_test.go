package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/dates"
	kafkax "github.com/seniorstay/staycation-api/internal/kafka"
	mailerService "github.com/seniorstay/staycation-api/internal/service/mailer"
	"github.com/seniorstay/staycation-api/internal/store"
	"github.com/seniorstay/staycation-api/internal/store/bookings"
)

type sent struct {
	kind string
	to   string
	d    mailerService.BookingDetails
}

type fakeMailer struct {
	sent []sent
	err  error
}

func (f *fakeMailer) record(kind, to string, d mailerService.BookingDetails) error {
	f.sent = append(f.sent, sent{kind, to, d})
	return f.err
}
func (f *fakeMailer) SendBookingConfirmationEmail(to string, d mailerService.BookingDetails) error {
	return f.record("confirmation", to, d)
}
func (f *fakeMailer) SendBookingUpdatedEmail(to string, d mailerService.BookingDetails) error {
	return f.record("updated", to, d)
}
func (f *fakeMailer) SendPaymentReceivedEmail(to string, d mailerService.BookingDetails) error {
	return f.record("paid", to, d)
}

type fakeBookings map[int64]*bookings.Booking

func (f fakeBookings) GetByID(_ context.Context, id int64) (*bookings.Booking, error) {
	b, ok := f[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func TestCreatedAndUpdatedEventsUseEventEmail(t *testing.T) {
	m := &fakeMailer{}
	svc := NewNotifyService(zap.NewNop(), fakeBookings{}, m)

	ev := kafkax.BookingEvent{Type: kafkax.EventBookingCreated, BookingID: 3, Email: "mak@example.com", FirstName: "Mak", CheckIn: "2024-05-01"}
	require.NoError(t, svc.HandleBookingEvent(context.Background(), ev))
	ev.Type = kafkax.EventBookingUpdated
	require.NoError(t, svc.HandleBookingEvent(context.Background(), ev))

	require.Len(t, m.sent, 2)
	assert.Equal(t, "confirmation", m.sent[0].kind)
	assert.Equal(t, "updated", m.sent[1].kind)
	assert.Equal(t, "mak@example.com", m.sent[0].to)
	assert.Equal(t, "Mak", m.sent[0].d.FirstName)
}

func TestPaidEventLooksUpBooking(t *testing.T) {
	email := "lim@example.com"
	in, _ := dates.Parse("2024-06-01")
	out, _ := dates.Parse("2024-06-03")
	m := &fakeMailer{}
	svc := NewNotifyService(zap.NewNop(), fakeBookings{8: {ID: 8, FirstName: "Lim", Email: &email, CheckInDate: in, CheckOutDate: out}}, m)

	require.NoError(t, svc.HandleBookingEvent(context.Background(), kafkax.BookingEvent{Type: kafkax.EventBookingPaid, BookingID: 8, TotalPrice: 300}))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "paid", m.sent[0].kind)
	assert.Equal(t, email, m.sent[0].to)
	assert.Equal(t, "Lim", m.sent[0].d.FirstName)
	assert.Equal(t, 300.0, m.sent[0].d.TotalPrice)

	err := svc.HandleBookingEvent(context.Background(), kafkax.BookingEvent{Type: kafkax.EventBookingPaid, BookingID: 9})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMissingEmailIsSkipped(t *testing.T) {
	m := &fakeMailer{}
	svc := NewNotifyService(zap.NewNop(), fakeBookings{}, m)
	require.NoError(t, svc.HandleBookingEvent(context.Background(), kafkax.BookingEvent{Type: kafkax.EventBookingCreated, BookingID: 1}))
	assert.Empty(t, m.sent)
}

func TestFailuresAreReturned(t *testing.T) {
	svc := NewNotifyService(zap.NewNop(), fakeBookings{}, &fakeMailer{err: errors.New("smtp down")})
	err := svc.HandleBookingEvent(context.Background(), kafkax.BookingEvent{Type: kafkax.EventBookingCreated, Email: "a@b.c"})
	assert.EqualError(t, err, "smtp down")

	err = svc.HandleBookingEvent(context.Background(), kafkax.BookingEvent{Type: "booking.exploded"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
