// Package notify renders charge emails and hands them to an outbound provider.
package notify

import (
	"context"
	"log/slog"

	"rentexpress/internal/config"
	"rentexpress/internal/models"
)

// Message is a rendered email ready for delivery.
type Message struct {
	Kind    models.NotificationKind
	To      string
	Subject string
	Text    string
	HTML    string
}

// Gateway delivers messages. A nil error means the provider accepted the message.
type Gateway interface {
	Send(ctx context.Context, msg Message) error
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, msg Message) error

func (f GatewayFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// New returns the HTTP provider when an API key is configured and a
// logging stand-in otherwise.
func New(cfg config.EmailConfig, logger *slog.Logger) Gateway {
	if cfg.APIKey == "" {
		if logger == nil {
			logger = slog.Default()
		}
		return LogGateway{Logger: logger}
	}
	return NewHTTPGateway(cfg)
}

// LogGateway writes messages to the log instead of sending them.
type LogGateway struct {
	Logger *slog.Logger
}

func (g LogGateway) Send(ctx context.Context, msg Message) error {
	g.Logger.InfoContext(ctx, "email not sent, no provider configured",
		"kind", msg.Kind, "to", msg.To, "subject", msg.Subject)
	return nil
}
