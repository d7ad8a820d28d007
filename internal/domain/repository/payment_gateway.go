package repository

import (
	"context"

	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
)

const (
	CheckoutModePayment      = "payment"
	CheckoutModeSubscription = "subscription"
)

// CheckoutRequest описывает checkout-сессию у платёжного провайдера.
// Для режима payment задаются Amount и ProductName, для subscription задаётся PriceID.
type CheckoutRequest struct {
	Mode        string
	CustomerID  string
	ClientRef   string
	PriceID     string
	Amount      valueobject.Money
	ProductName string
	Metadata    map[string]string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}
