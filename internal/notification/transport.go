package notification

import (
	"context"
	"encoding/json"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/providers/email"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// LogTransport writes events to the structured log only.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	return &LogTransport{log: log.Named("notification.log")}
}

func (t *LogTransport) Name() string { return "log" }

func (t *LogTransport) Deliver(ctx context.Context, event Event) error {
	t.log.Info("notification",
		zap.String("type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.String("request_id", event.RequestID),
		zap.Any("data", event.Data),
	)
	return nil
}

// EmailTransport renders the event's template and mails it to a fixed
// recipient list.
type EmailTransport struct {
	provider   email.Provider
	recipients []string
}

func NewEmailTransport(provider email.Provider, recipients []string) *EmailTransport {
	return &EmailTransport{provider: provider, recipients: recipients}
}

func (t *EmailTransport) Name() string { return "smtp" }

func (t *EmailTransport) Deliver(ctx context.Context, event Event) error {
	if len(t.recipients) == 0 {
		return email.ErrNoRecipients
	}
	return t.provider.SendTemplate(ctx, t.recipients, event.TemplateName(), event.Data)
}

type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// NATSTransport publishes the JSON encoded event on <prefix>.<type>.
type NATSTransport struct {
	conn   Publisher
	prefix string
}

func NewNATSTransport(conn Publisher, prefix string) *NATSTransport {
	return &NATSTransport{conn: conn, prefix: prefix}
}

func (t *NATSTransport) Name() string { return "nats" }

func (t *NATSTransport) Subject(event Event) string {
	if t.prefix == "" {
		return string(event.Type)
	}
	return t.prefix + "." + string(event.Type)
}

func (t *NATSTransport) Deliver(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return t.conn.Publish(t.Subject(event), payload)
}
