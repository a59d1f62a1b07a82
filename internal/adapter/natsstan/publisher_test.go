package natsstan

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/example/configurator-checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	subjects []string
	payloads [][]byte
	err      error
	closed   bool
}

func (c *recordingConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func (c *recordingConn) Close() error {
	c.closed = true
	return nil
}

func testEvent() domain.OrderEvent {
	return domain.OrderEvent{
		Type:            domain.EventOrderCreated,
		OrderID:         "order-1",
		UserID:          "user-1",
		ConfigurationID: "cfg-1",
		Amount:          "11.50",
		OccurredAt:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_Publish(t *testing.T) {
	rc := &recordingConn{}
	p := &Publisher{Subject: "orders", conn: rc}

	require.NoError(t, p.Publish(context.Background(), testEvent()))
	require.Len(t, rc.payloads, 1)
	assert.Equal(t, "orders", rc.subjects[0])

	var got domain.OrderEvent
	require.NoError(t, json.Unmarshal(rc.payloads[0], &got))
	assert.Equal(t, testEvent(), got)

	require.NoError(t, p.Close())
	assert.True(t, rc.closed)
}

func TestPublisher_Errors(t *testing.T) {
	rc := &recordingConn{err: errors.New("connection closed")}
	p := &Publisher{Subject: "orders", conn: rc}
	require.Error(t, p.Publish(context.Background(), testEvent()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, (&Publisher{Subject: "orders", conn: &recordingConn{}}).Publish(ctx, testEvent()), context.Canceled)
}

func TestDecodeEvents(t *testing.T) {
	var got []domain.OrderEvent
	h := DecodeEvents(func(_ context.Context, e domain.OrderEvent) error {
		got = append(got, e)
		return nil
	})

	raw, err := json.Marshal(testEvent())
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), raw))
	require.Len(t, got, 1)
	assert.Equal(t, "order-1", got[0].OrderID)

	require.ErrorIs(t, h(context.Background(), []byte("not json")), domain.ErrValidation)
	require.ErrorIs(t, h(context.Background(), []byte(`{"type":"order.created"}`)), domain.ErrValidation)
	assert.Len(t, got, 1)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), testEvent()))
}
