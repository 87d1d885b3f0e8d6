package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/gaprints/prints-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestSMTPSenderBuildsHeaders(t *testing.T) {
	d := &captureDialer{}
	sender := &SMTPSender{dialer: d}

	err := sender.Send(context.Background(), Message{
		From:    "shop@example.com",
		To:      "owner@example.com",
		ReplyTo: "buyer@example.com",
		BCC:     "archive@example.com",
		Subject: "New order GA-20260101-ABCD",
		Text:    "plain",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"owner@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"buyer@example.com"}, m.GetHeader("Reply-To"))
	assert.Equal(t, []string{"archive@example.com"}, m.GetHeader("Bcc"))
	assert.Equal(t, []string{"New order GA-20260101-ABCD"}, m.GetHeader("Subject"))
}

func TestSMTPSenderOmitsEmptyOptionalHeaders(t *testing.T) {
	m := buildMessage(Message{From: "a@example.com", To: "b@example.com", Subject: "s", Text: "t"})
	assert.Empty(t, m.GetHeader("Reply-To"))
	assert.Empty(t, m.GetHeader("Bcc"))
}

func TestSMTPSenderWrapsTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	sender := &SMTPSender{dialer: &captureDialer{err: boom}}

	err := sender.Send(context.Background(), Message{To: "owner@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSMTPSenderRequiresRecipient(t *testing.T) {
	d := &captureDialer{}
	sender := &SMTPSender{dialer: d}
	require.Error(t, sender.Send(context.Background(), Message{}))
	assert.Empty(t, d.sent)
}

func TestNewFallsBackToLogSender(t *testing.T) {
	sender, err := New(config.SMTPConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, sender)
	assert.NoError(t, sender.Send(context.Background(), Message{To: "x@example.com"}))

	smtp, err := New(config.SMTPConfig{Host: "smtp.example.com", Port: 465}, nil)
	require.NoError(t, err)
	typed, ok := smtp.(*SMTPSender)
	require.True(t, ok)
	assert.True(t, typed.dialer.(*gomail.Dialer).SSL)
}
