package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
)

type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *entity.Subscription) error
	FindByCustomer(ctx context.Context, customerID string) (*entity.Subscription, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error)
}

type InvoiceRepository interface {
	Upsert(ctx context.Context, invoice *entity.Invoice) error
}

type PaymentRepository interface {
	// Record идемпотентна по SessionID.
	Record(ctx context.Context, payment *entity.Payment) error
	ListRecent(ctx context.Context, limit int) ([]*entity.Payment, error)
}

// WebhookEventRepository хранит идентификаторы уже обработанных событий.
type WebhookEventRepository interface {
	// Begin регистрирует событие и вызывает fn в той же транзакции.
	// Если событие уже было обработано, fn не вызывается и возвращается false.
	Begin(ctx context.Context, eventID, eventType string, fn func(ctx context.Context) error) (bool, error)
}
