package ws

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/domain/event"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
	"github.com/ignatzorin/hebammen-backend/internal/models"
)

// NotificationSaver сохраняет уведомление в БД.
type NotificationSaver interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) (*models.Notification, error)
}

// Broadcaster отправляет событие подключённым клиентам.
type Broadcaster interface {
	BroadcastToUser(ctx context.Context, userID uuid.UUID, event string, data any) error
}

// BookingEventPublisher сохраняет событие бронирования как уведомление
// для обеих сторон и отправляет его им по WebSocket.
type BookingEventPublisher struct {
	hub   Broadcaster
	saver NotificationSaver
}

func NewBookingEventPublisher(hub Broadcaster, saver NotificationSaver) *BookingEventPublisher {
	return &BookingEventPublisher{hub: hub, saver: saver}
}

func (p *BookingEventPublisher) Publish(ctx context.Context, evt event.BookingStatusChanged) error {
	var firstErr error
	for _, userID := range evt.Recipients() {
		if p.saver != nil {
			if _, err := p.saver.CreateNotification(ctx, userID, evt.Type(), evt); err != nil {
				logger.WithFields(logrus.Fields{
					"user_id":    userID,
					"booking_id": evt.BookingID,
					"error":      err.Error(),
				}).Warn("ws: не удалось сохранить уведомление")
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		if err := p.hub.BroadcastToUser(ctx, userID, evt.Type(), evt); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
