// Package notify delivers account notifications: verification codes and
// password reset links.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Kind identifies the notification template.
type Kind string

const (
	KindEmailVerification Kind = "email_verification"
	KindPhoneOTP          Kind = "phone_otp"
	KindPasswordReset     Kind = "password_reset"
)

// Channel is the medium a message is addressed through.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

var ErrUnsupportedChannel = errors.New("notify: unsupported channel")

// Message is a single notification to one recipient.
type Message struct {
	Kind      Kind    `json:"kind"`
	Channel   Channel `json:"channel"`
	To        string  `json:"to"`
	Name      string  `json:"name,omitempty"`
	Code      string  `json:"code,omitempty"`
	Link      string  `json:"link,omitempty"`
	ExpiresIn string  `json:"expiresIn,omitempty"`
}

// Notifier sends notifications.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Router dispatches messages to a notifier per channel.
type Router struct {
	Email Notifier
	Phone Notifier
}

// Notify implements Notifier.
func (r *Router) Notify(ctx context.Context, msg Message) error {
	var next Notifier
	switch msg.Channel {
	case ChannelEmail:
		next = r.Email
	case ChannelPhone:
		next = r.Phone
	}
	if next == nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedChannel, msg.Channel)
	}
	return next.Notify(ctx, msg)
}

// LogNotifier writes notifications to the log instead of delivering them.
// It is used when no transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	n.logger.InfoContext(ctx, "notification not delivered, no transport configured",
		slog.String("kind", string(msg.Kind)),
		slog.String("channel", string(msg.Channel)),
		slog.String("to", msg.To),
	)
	return nil
}
