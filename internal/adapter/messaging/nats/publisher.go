package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"github.com/nats-io/nats.go"
)

type Publisher struct {
	conn   *nats.Conn
	logger *logger.Logger
}

func NewPublisher(url string, timeout time.Duration, log *logger.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("webimoveis"),
		nats.Timeout(timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return &Publisher{conn: conn, logger: log}, nil
}

// Publish sends data as JSON. A nil data is sent as the JSON null.
func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", subject, err)
	}
	if err := p.conn.Publish(subject, jsonData); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe delivers the raw payload of every message on subject until the
// returned func is called.
func (p *Publisher) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	sub, err := p.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed && err != nats.ErrBadSubscription {
			p.logger.Warn("Publisher.Subscribe: unsubscribe failed", "subject", subject, "error", err.Error())
		}
	}, nil
}

// Flush waits until the server has processed everything published so far.
func (p *Publisher) Flush() error {
	return p.conn.Flush()
}

func (p *Publisher) Close() {
	p.conn.Close()
}

var _ domain.EventPublisher = (*Publisher)(nil)
