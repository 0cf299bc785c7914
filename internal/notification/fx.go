package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/config"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/providers/email"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notification",
	fx.Provide(NewTransport),
	fx.Provide(NewDispatcherFromConfig),
	fx.Provide(func(d *Dispatcher) Notifier { return d }),
)

// NewTransport builds the transport selected by NOTIFY_TRANSPORT.
func NewTransport(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (Transport, error) {
	switch cfg.Notify.Transport {
	case config.NotifyTransportSMTP:
		provider := email.NewSMTP(email.Config{
			Host:     cfg.Notify.SMTPHost,
			Port:     cfg.Notify.SMTPPort,
			Username: cfg.Notify.SMTPUsername,
			Password: cfg.Notify.SMTPPassword,
			From:     cfg.Notify.SMTPFrom,
		})
		return NewEmailTransport(provider, cfg.Notify.Recipients), nil
	case config.NotifyTransportNATS:
		conn, err := nats.Connect(cfg.Notify.NATSURL,
			nats.Name(cfg.AppName),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return conn.Drain()
			},
		})
		return NewNATSTransport(conn, cfg.Notify.NATSSubjectPrefix), nil
	case config.NotifyTransportLog, "":
		return NewLogTransport(log), nil
	default:
		return nil, fmt.Errorf("unknown notify transport %q", cfg.Notify.Transport)
	}
}

func NewDispatcherFromConfig(lc fx.Lifecycle, cfg config.Config, transport Transport, log *zap.Logger) *Dispatcher {
	d := NewDispatcher(transport, log, DispatcherConfig{
		Workers:   cfg.Notify.Workers,
		QueueSize: cfg.Notify.QueueSize,
	})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.Start()
			return nil
		},
		OnStop: d.Stop,
	})
	return d
}
