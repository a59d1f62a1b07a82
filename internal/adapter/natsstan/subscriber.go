package natsstan

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/configurator-checkout/internal/domain"
	stan "github.com/nats-io/stan.go"
)

const (
	defaultAckWait        = 10 * time.Second
	defaultHandlerTimeout = 5 * time.Second
)

// Subscriber держит долговечную подписку на события заказа в очереди QueueGroup.
// Сообщение подтверждается только после успешной обработки.
type Subscriber struct {
	ClusterID  string
	ClientID   string
	URL        string
	Subject    string
	QueueGroup string
	Durable    string
	AckWait    time.Duration
}

// Subscribe возвращается сразу после регистрации; соединение закрывается
// при отмене ctx.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(ctx context.Context, raw []byte) error) error {
	clientID := s.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("checkout-sub-%d", time.Now().UnixNano())
	}
	ackWait := s.AckWait
	if ackWait <= 0 {
		ackWait = defaultAckWait
	}

	sc, err := stan.Connect(s.ClusterID, clientID, stan.NatsURL(s.URL))
	if err != nil {
		return fmt.Errorf("stan connect: %w", err)
	}
	onMsg := func(m *stan.Msg) {
		hCtx, cancel := context.WithTimeout(ctx, defaultHandlerTimeout)
		defer cancel()
		if err := handler(hCtx, m.Data); err != nil {
			log.Printf("subject=%s seq=%d redelivered=%t: %v", m.Subject, m.Sequence, m.Redelivered, err)
			return
		}
		if err := m.Ack(); err != nil {
			log.Printf("subject=%s seq=%d ack: %v", m.Subject, m.Sequence, err)
		}
	}
	opts := []stan.SubscriptionOption{
		stan.DurableName(s.Durable),
		stan.SetManualAckMode(),
		stan.AckWait(ackWait),
		stan.DeliverAllAvailable(),
	}
	if _, err := sc.QueueSubscribe(s.Subject, s.QueueGroup, onMsg, opts...); err != nil {
		_ = sc.Close()
		return fmt.Errorf("subscribe %s: %w", s.Subject, err)
	}

	go func() {
		<-ctx.Done()
		if err := sc.Close(); err != nil {
			log.Printf("stan close: %v", err)
		}
	}()
	return nil
}

var _ domain.MessageSubscriber = (*Subscriber)(nil)
