package cache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "leaderboards.invalidate"

// NATSBus — шина инвалидации на NATS. Политика переподключения задаётся
// явно при конструировании, соединением владеет точка входа процесса.
type NATSBus struct {
	nc      *nats.Conn
	subject string
}

func NewNATSBus(url, subject string, logger *slog.Logger) (*NATSBus, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	opts := []nats.Option{
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
	}
	if logger != nil {
		opts = append(opts,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("nats disconnected", slog.Any("error", err))
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				logger.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
			}),
		)
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSBus{nc: nc, subject: subject}, nil
}

func (b *NATSBus) Publish() error {
	return b.nc.Publish(b.subject, nil)
}

func (b *NATSBus) Subscribe(fn func()) error {
	_, err := b.nc.Subscribe(b.subject, func(_ *nats.Msg) { fn() })
	return err
}

func (b *NATSBus) Close() {
	if err := b.nc.Drain(); err != nil {
		b.nc.Close()
	}
}
