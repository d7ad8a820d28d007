package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/hebammen-backend/internal/domain/event"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	out []published
	err error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.out = append(f.out, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestPublisher_RoutingKeys(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisherWithChannel(ch, "bookings")

	created := event.BookingStatusChanged{BookingID: uuid.New(), To: valueobject.BookingStatusRequested, OccurredAt: time.Now()}
	paid := event.BookingStatusChanged{BookingID: uuid.New(), From: valueobject.BookingStatusConfirmed, To: valueobject.BookingStatusPaid, OccurredAt: time.Now()}

	require.NoError(t, p.Publish(context.Background(), created))
	require.NoError(t, p.Publish(context.Background(), paid))

	require.Len(t, ch.out, 2)
	assert.Equal(t, "bookings", ch.out[0].exchange)
	assert.Equal(t, "booking.created", ch.out[0].key)
	assert.Equal(t, "booking.status.paid", ch.out[1].key)
	assert.Equal(t, "application/json", ch.out[1].msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.out[1].msg.DeliveryMode)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(ch.out[1].msg.Body, &body))
	assert.Equal(t, "PAID", body["to"])
	assert.Equal(t, paid.BookingID.String(), body["booking_id"])
}

func TestPublisher_WrapsError(t *testing.T) {
	p := newPublisherWithChannel(&fakeChannel{err: errors.New("channel closed")}, "bookings")

	err := p.Publish(context.Background(), event.BookingStatusChanged{From: valueobject.BookingStatusRequested, To: valueobject.BookingStatusDeclined})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking.status.declined")
}
