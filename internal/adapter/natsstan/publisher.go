package natsstan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/configurator-checkout/internal/domain"
	stan "github.com/nats-io/stan.go"
)

type conn interface {
	Publish(subject string, data []byte) error
	Close() error
}

// Publisher публикует события заказа в NATS Streaming в виде JSON.
type Publisher struct {
	Subject string
	conn    conn
}

// Connect подключается к кластеру; пустой clientID заменяется уникальным.
func Connect(clusterID, clientID, url, subject string) (*Publisher, error) {
	if clientID == "" {
		clientID = fmt.Sprintf("checkout-pub-%d", time.Now().UnixNano())
	}
	sc, err := stan.Connect(clusterID, clientID, stan.NatsURL(url))
	if err != nil {
		return nil, fmt.Errorf("stan connect: %w", err)
	}
	return &Publisher{Subject: subject, conn: sc}, nil
}

func (p *Publisher) Publish(ctx context.Context, e domain.OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.Subject, b); err != nil {
		return fmt.Errorf("publish to %s: %w", p.Subject, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}

var _ domain.EventPublisher = (*Publisher)(nil)

// NopPublisher используется, когда стриминг выключен.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.OrderEvent) error { return nil }

var _ domain.EventPublisher = NopPublisher{}
