package mailer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/mailer"
)

type MailerService struct {
	log    *zap.Logger
	sender mailer.Sender
}

func NewMailerService(log *zap.Logger, sender mailer.Sender) *MailerService {
	return &MailerService{
		log:    log,
		sender: sender,
	}
}

// BookingDetails is the data rendered into booking emails.
type BookingDetails struct {
	BookingID  int64
	FirstName  string
	CheckIn    string
	CheckOut   string
	TotalPrice float64
}

func (m *MailerService) SendBookingConfirmationEmail(to string, d BookingDetails) error {
	subject := fmt.Sprintf("Your stay is reserved (booking #%d)", d.BookingID)
	body := fmt.Sprintf(`
Dear %s,

Thank you for booking with us. Your reservation has been received.

Booking reference: #%d
Check-in:  %s
Check-out: %s
Total:     RM %.2f

Your booking stays in "Pending Payment" until payment is recorded.

Warm regards,
Staycation Team
`, d.FirstName, d.BookingID, d.CheckIn, d.CheckOut, d.TotalPrice)

	return m.send(to, subject, body, "booking confirmation")
}

func (m *MailerService) SendBookingUpdatedEmail(to string, d BookingDetails) error {
	subject := fmt.Sprintf("Your booking #%d has been updated", d.BookingID)
	body := fmt.Sprintf(`
Dear %s,

Your booking has been updated. The current details are:

Check-in:  %s
Check-out: %s
Total:     RM %.2f

If you did not request this change, please contact us.

Warm regards,
Staycation Team
`, d.FirstName, d.CheckIn, d.CheckOut, d.TotalPrice)

	return m.send(to, subject, body, "booking update")
}

func (m *MailerService) SendPaymentReceivedEmail(to string, d BookingDetails) error {
	subject := fmt.Sprintf("Payment received for booking #%d", d.BookingID)
	body := fmt.Sprintf(`
Dear %s,

We have received your payment of RM %.2f. Your booking is now confirmed.

Check-in:  %s
Check-out: %s

We look forward to welcoming you.

Warm regards,
Staycation Team
`, d.FirstName, d.TotalPrice, d.CheckIn, d.CheckOut)

	return m.send(to, subject, body, "payment receipt")
}

func (m *MailerService) send(to, subject, body, kind string) error {
	err := m.sender.Send(mailer.Mail{To: to, Subject: subject, Body: body})
	if err != nil {
		m.log.Error("Failed to send email", zap.String("kind", kind), zap.Error(err), zap.String("email", to))
		return err
	}
	m.log.Info("Email sent", zap.String("kind", kind), zap.String("email", to))
	return nil
}
