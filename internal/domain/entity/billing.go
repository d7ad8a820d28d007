package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
)

type Subscription struct {
	UserID               uuid.UUID
	StripeSubscriptionID string
	StripeCustomerID     string
	Status               string
	PriceID              *string
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
	UpdatedAt            time.Time
}

func (s *Subscription) Plan() valueobject.Plan {
	return valueobject.PlanForSubscriptionStatus(s.Status)
}

type Invoice struct {
	UserID          uuid.UUID
	StripeInvoiceID string
	Amount          valueobject.Money
	HostedURL       *string
	Status          *string
	CreatedAt       time.Time
}

// Payment фиксирует оплату бронирования через checkout-сессию.
type Payment struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	SessionID string
	Amount    valueobject.Money
	PaidAt    time.Time
	CreatedAt time.Time
}
