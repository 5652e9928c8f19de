package notify

import (
	"log"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/shanehull/labourscan/internal/config"
)

const smtpTimeout = 10 * time.Second

// EmailSender delivers messages via SMTP.
type EmailSender struct {
	cfg  config.Email
	send func(m *gomail.Message) error
}

func NewEmailSender(cfg config.Email) *EmailSender {
	s := &EmailSender{cfg: cfg}
	s.send = func(m *gomail.Message) error {
		dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
		dialer.Timeout = smtpTimeout
		return dialer.DialAndSend(m)
	}
	return s
}

// Send delivers an email with an HTML body and plain text fallback.
func (s *EmailSender) Send(msg *RenderedMessage) error {
	from := s.cfg.FromEmail
	if from == "" {
		from = s.cfg.SMTPUser
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", s.cfg.ToEmail)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.HTML != "" && msg.Text != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}

	if err := s.send(m); err != nil {
		log.Printf("Email error: failed to send to %s (Subject: %s): %v", s.cfg.ToEmail, msg.Subject, err)
		return err
	}

	log.Printf("Email sent: %s", msg.Subject)
	return nil
}
