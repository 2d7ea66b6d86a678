package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	mail "github.com/wneessen/go-mail"

	"phonebook/internal/config"
)

// Sender delivers verification mail. Delivery is an external concern; the
// verification manager's responsibility ends at handing over the token.
type Sender interface {
	SendVerification(ctx context.Context, to, token string) error
}

// SMTPSender sends verification mail over SMTP.
type SMTPSender struct {
	cfg     config.SMTPConfig
	baseURL string
}

// NewSMTPSender creates an SMTP-backed sender. Verification links are built
// against baseURL.
func NewSMTPSender(cfg config.SMTPConfig, baseURL string) *SMTPSender {
	return &SMTPSender{cfg: cfg, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// SendVerification mails the one-time verification link.
func (s *SMTPSender) SendVerification(ctx context.Context, to, token string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/api/verify/%s", s.baseURL, token)
	msg.Subject("Verify your email address")
	msg.SetBodyString(mail.TypeTextPlain,
		"Welcome!\n\nPlease confirm your email address by opening the link below:\n\n"+verifyURL+"\n")

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

// LogSender is used when no SMTP host is configured: the verification link
// goes to the log instead of a mailbox.
type LogSender struct {
	baseURL string
}

// NewLogSender creates a log-only sender.
func NewLogSender(baseURL string) *LogSender {
	return &LogSender{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// SendVerification logs the verification link.
func (s *LogSender) SendVerification(ctx context.Context, to, token string) error {
	slog.Info("verification_mail",
		"to", to,
		"verify_url", fmt.Sprintf("%s/api/verify/%s", s.baseURL, token))
	return nil
}
