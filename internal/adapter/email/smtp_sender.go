package email

import (
	"fmt"

	"github.com/reelcart/storefront/internal/app/config"
	"github.com/reelcart/storefront/internal/platform/logger"
	"gopkg.in/gomail.v2"
)

// Sender delivers transactional mail. The only caller today is the password
// reset flow.
type Sender interface {
	SendEmail(to []string, subject, body string) error
}

type smtpSender struct {
	cfg config.SMTPConfig
	log logger.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, log logger.Logger) Sender {
	return &smtpSender{cfg: cfg, log: log}
}

func (s *smtpSender) SendEmail(to []string, subject, body string) error {
	if s.cfg.Host == "" || s.cfg.SenderEmail == "" {
		s.log.Errorf("SMTP configuration is incomplete, email not sent (host=%q, sender=%q)",
			s.cfg.Host, s.cfg.SenderEmail)
		return fmt.Errorf("SMTP configuration is incomplete")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.SenderEmail)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		s.log.Errorf("Failed to send email to %v with subject %q: %v", to, subject, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Infof("Email sent to %v with subject %q", to, subject)
	return nil
}
