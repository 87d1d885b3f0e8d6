// Package mailer delivers order notification emails over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/gaprints/prints-backend/pkg/config"
	"github.com/gaprints/prints-backend/pkg/logger"
	"gopkg.in/gomail.v2"
)

// Message is a single multipart email. Text is the plain body, HTML its alternative.
type Message struct {
	From    string
	To      string
	ReplyTo string
	BCC     string
	Subject string
	Text    string
	HTML    string
}

// Sender hands one message to the mail transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends through a gomail dialer. Each Send opens its own connection.
type SMTPSender struct {
	dialer dialer
	logg   *logger.Logger
}

// NewSMTPSender builds a sender from the SMTP settings.
func NewSMTPSender(cfg config.SMTPConfig, logg *logger.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.SSL = cfg.UseSSL()
	return &SMTPSender{dialer: d, logg: logg}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return errors.New("mail recipient is required")
	}
	if err := s.dialer.DialAndSend(buildMessage(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	if s.logg != nil {
		s.logg.Debug(s.logg.WithField(ctx, "subject", msg.Subject), "email sent")
	}
	return nil
}

func buildMessage(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	if msg.BCC != "" {
		m.SetHeader("Bcc", msg.BCC)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m
}

// LogSender only logs messages. It backs local runs without SMTP credentials.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if s.logg == nil {
		return nil
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"to":       msg.To,
		"reply_to": msg.ReplyTo,
		"subject":  msg.Subject,
	})
	s.logg.Info(ctx, "smtp disabled, email not sent")
	return nil
}

// New picks the SMTP sender when a host is configured and the log sender otherwise.
func New(cfg config.SMTPConfig, logg *logger.Logger) (Sender, error) {
	if cfg.Host == "" {
		return NewLogSender(logg), nil
	}
	return NewSMTPSender(cfg, logg)
}
