package worker

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/launchlift/launchlift/internal/models"
)

type EmailConfig struct {
	From     string
	Password string
	Host     string
	Port     int
}

func LoadEmailConfig() (*EmailConfig, error) {
	from := os.Getenv("EMAIL_FROM")
	password := os.Getenv("EMAIL_PASSWORD")
	host := os.Getenv("EMAIL_HOST")
	portStr := os.Getenv("EMAIL_PORT")

	if from == "" || password == "" || host == "" || portStr == "" {
		return nil, fmt.Errorf("email configuration not complete")
	}

	var port int
	if _, err := fmt.Sscan(portStr, &port); err != nil {
		return nil, fmt.Errorf("failed to parse EMAIL_PORT: %w", err)
	}

	return &EmailConfig{
		From:     from,
		Password: password,
		Host:     host,
		Port:     port,
	}, nil
}

// EmailSender delivers one notification email.
type EmailSender interface {
	Send(payload models.EmailPayload) error
}

// SMTPSender sends via plain-auth SMTP.
type SMTPSender struct {
	cfg *EmailConfig
}

func NewSMTPSender(cfg *EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(payload models.EmailPayload) error {
	if payload.Recipient == "" || payload.Subject == "" {
		return fmt.Errorf("recipient and subject are required")
	}

	auth := smtp.PlainAuth("", s.cfg.From, s.cfg.Password, s.cfg.Host)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.From, payload.Recipient, payload.Subject, payload.Body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{payload.Recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
