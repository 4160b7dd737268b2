package accountd

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	mail "github.com/wneessen/go-mail"
)

// VerifyPath is the fixed path the confirmation link points at; the
// scheme and host come from the signup request.
const VerifyPath = "/api/v1/auth/verify"

// ConfirmationLink builds the only externally emitted artifact besides
// the session cookie: base URL + verify path + the raw token as a query
// parameter.
func ConfirmationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + VerifyPath + "?token=" + url.QueryEscape(token)
}

// NewConfirmationEmail builds the signup confirmation message.
func NewConfirmationEmail(to, link string) Email {
	return Email{
		To:      to,
		Subject: "Confirm your email address",
		TextBody: fmt.Sprintf(
			"Welcome!\n\nPlease confirm your email address by opening the link below:\n\n%s\n\nThe link expires in 24 hours. If you did not sign up, ignore this message.\n",
			link,
		),
	}
}

// SMTPMailer delivers mail through a single SMTP endpoint.
type SMTPMailer struct {
	client *mail.Client
	from   string
	logger Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer builds a Mailer from the SMTP section of the config.
func NewSMTPMailer(cfg *SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.GetPort()),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}

	if cfg.GetUsername() != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.GetUsername()),
			mail.WithPassword(cfg.GetPassword()),
		)
	}

	client, err := mail.NewClient(cfg.GetHost(), opts...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to build SMTP client")
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.GetFrom(),
		logger: defLogger{},
	}, nil
}

func (m *SMTPMailer) WithLogger(logger Logger) *SMTPMailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Send delivers the message synchronously. The caller decides what a
// failure means; the signup workflow aborts its transaction on error.
func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	msg := mail.NewMsg()

	if err := msg.From(m.from); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid sender address")
	}
	if err := msg.To(email.To); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid recipient address")
	}

	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.TextBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("SMTP delivery failed", "to", email.To, "error", err)
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to deliver email")
	}

	return nil
}
