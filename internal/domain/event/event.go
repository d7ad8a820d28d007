package event

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
)

// BookingStatusChanged публикуется после того, как новый статус записан в БД.
// Для новой заявки From пустой.
type BookingStatusChanged struct {
	BookingID  uuid.UUID                 `json:"booking_id"`
	ClientID   uuid.UUID                 `json:"client_id"`
	MidwifeID  uuid.UUID                 `json:"midwife_id"`
	From       valueobject.BookingStatus `json:"from,omitempty"`
	To         valueobject.BookingStatus `json:"to"`
	ActorID    uuid.UUID                 `json:"actor_id"`
	OccurredAt time.Time                 `json:"occurred_at"`
}

func (e BookingStatusChanged) Type() string {
	if e.From == "" {
		return TypeBookingCreated
	}
	return TypeBookingStatusChanged
}

// RoutingKey возвращает ключ для topic exchange: booking.created или booking.status.<status>.
func (e BookingStatusChanged) RoutingKey() string {
	if e.From == "" {
		return TypeBookingCreated
	}
	return "booking.status." + strings.ToLower(string(e.To))
}

// Recipients возвращает пользователей, которым доставляется событие в реальном времени.
func (e BookingStatusChanged) Recipients() []uuid.UUID {
	return []uuid.UUID{e.ClientID, e.MidwifeID}
}

type Publisher interface {
	Publish(ctx context.Context, evt BookingStatusChanged) error
}

// Multi рассылает событие всем подписчикам. Ошибки отдельных подписчиков только логируются.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt BookingStatusChanged) error {
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			logger.WithFields(logrus.Fields{
				"booking_id": evt.BookingID,
				"to":         evt.To,
				"error":      err.Error(),
			}).Warn("event: не удалось опубликовать событие бронирования")
		}
	}
	return nil
}

type Nop struct{}

func (Nop) Publish(context.Context, BookingStatusChanged) error { return nil }

type outboxKey struct{}

type pendingEvent struct {
	publisher Publisher
	evt       BookingStatusChanged
}

type outbox struct {
	mu      sync.Mutex
	pending []pendingEvent
}

// Emit публикует событие сразу либо, внутри Deferred, откладывает его до успешного завершения.
func Emit(ctx context.Context, publisher Publisher, evt BookingStatusChanged) {
	if publisher == nil {
		return
	}
	if box, ok := ctx.Value(outboxKey{}).(*outbox); ok {
		box.mu.Lock()
		box.pending = append(box.pending, pendingEvent{publisher: publisher, evt: evt})
		box.mu.Unlock()
		return
	}
	_ = publisher.Publish(ctx, evt)
}

// Deferred выполняет fn и публикует накопленные через Emit события только если fn вернула nil.
// При ошибке события отбрасываются. Вложенный вызов пишет во внешний буфер.
func Deferred(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(outboxKey{}).(*outbox); ok {
		return fn(ctx)
	}

	box := &outbox{}
	if err := fn(context.WithValue(ctx, outboxKey{}, box)); err != nil {
		return err
	}

	box.mu.Lock()
	pending := box.pending
	box.mu.Unlock()
	for _, p := range pending {
		_ = p.publisher.Publish(ctx, p.evt)
	}
	return nil
}
