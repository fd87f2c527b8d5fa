package mailer

import (
	"gopkg.in/gomail.v2"
)

type Mail struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(m Mail) error
}

type SMTPSender struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (s *SMTPSender) Send(m Mail) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	return d.DialAndSend(msg)
}
