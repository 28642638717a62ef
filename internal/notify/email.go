package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/projecthub/projecthub-api/internal/config"
	"gopkg.in/gomail.v2"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier delivers email-channel messages over SMTP.
type EmailNotifier struct {
	cfg    config.MailConfig
	sender mailSender
	logger *slog.Logger
}

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(cfg config.MailConfig, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		logger: logger,
	}
}

// Notify implements Notifier.
func (n *EmailNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.Channel != ChannelEmail {
		return fmt.Errorf("%w: %q", ErrUnsupportedChannel, msg.Channel)
	}
	if !n.cfg.Enabled() {
		return fmt.Errorf("email config missing")
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("empty recipient")
	}

	m, err := n.build(msg)
	if err != nil {
		return err
	}

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.InfoContext(ctx, "email sent", slog.String("to", msg.To), slog.String("kind", string(msg.Kind)))
	return nil
}

func (n *EmailNotifier) build(msg Message) (*gomail.Message, error) {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.FromEmail)
	m.SetHeader("To", msg.To)

	name := html.EscapeString(msg.Name)
	switch msg.Kind {
	case KindEmailVerification:
		m.SetHeader("Subject", "[ProjectHub] Verify your email")
		m.SetBody("text/html", fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Welcome to ProjectHub, %s</h2>
    <p>Your verification code is:</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">%s</div>
    <p>The code expires in %s.</p>
  </div>
</body>
</html>`, name, html.EscapeString(msg.Code), msg.ExpiresIn))
	case KindPasswordReset:
		link := html.EscapeString(msg.Link)
		m.SetHeader("Subject", "[ProjectHub] Reset your password")
		m.SetBody("text/html", fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Password reset</h2>
    <p>Hi %s, use the link below to choose a new password.</p>
    <p><a href="%s" target="_blank">%s</a></p>
    <p>The link expires in %s. If you did not ask for this, ignore this email.</p>
  </div>
</body>
</html>`, name, link, link, msg.ExpiresIn))
	default:
		return nil, fmt.Errorf("unknown email kind %q", msg.Kind)
	}

	return m, nil
}
