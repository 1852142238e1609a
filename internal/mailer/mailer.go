package mailer

import (
	"errors"
	"fmt"

	"github.com/Abdurahmanit/webimoveis/internal/config"
	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"gopkg.in/gomail.v2"
)

var ErrIncompleteConfig = errors.New("SMTP configuration is incomplete")

// SMTPMailer sends owner notifications through an SMTP relay.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *logger.Logger
	send   func(m *gomail.Message) error
}

func NewSMTPMailer(cfg config.SMTPConfig, log *logger.Logger) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPMailer{cfg: cfg, logger: log, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

func (s *SMTPMailer) SendListingCreatedEmail(toEmail, listingTitle string) error {
	if s.cfg.Host == "" || s.cfg.From == "" {
		s.logger.Error("SMTPMailer: configuration is incomplete, email not sent",
			"host", s.cfg.Host, "from", s.cfg.From)
		return ErrIncompleteConfig
	}
	if toEmail == "" {
		return errors.New("recipient email is empty")
	}

	m := newListingCreatedMessage(s.cfg.From, toEmail, listingTitle)
	if err := s.send(m); err != nil {
		s.logger.Error("SMTPMailer: failed to send email", "to", toEmail, "error", err.Error())
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Info("SMTPMailer: email sent", "to", toEmail, "title", listingTitle)
	return nil
}

func newListingCreatedMessage(from, to, title string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Seu imóvel foi publicado")
	m.SetBody("text/plain", "Your listing '"+title+"' has been created successfully.")
	return m
}

var _ domain.Mailer = (*SMTPMailer)(nil)
