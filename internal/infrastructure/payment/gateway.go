package payment

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type checkoutSessions interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type portalSessions interface {
	New(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)
}

// StripeGateway создаёт checkout-сессии и сессии портала оплаты в Stripe.
type StripeGateway struct {
	checkout checkoutSessions
	portal   portalSessions
}

func NewStripeGateway(secretKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{checkout: sc.CheckoutSessions, portal: sc.BillingPortalSessions}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req repository.CheckoutRequest) (*repository.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(req.Mode),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	if req.ClientRef != "" {
		params.ClientReferenceID = stripe.String(req.ClientRef)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	switch req.Mode {
	case repository.CheckoutModePayment:
		currency := strings.ToLower(req.Amount.Currency)
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(req.Amount.Cents()),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.ProductName),
				},
			},
		}}
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{Metadata: req.Metadata}
	case repository.CheckoutModeSubscription:
		if req.PriceID == "" {
			return nil, apperror.New(apperror.ErrCodeGatewayError, "не задан тариф подписки")
		}
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(req.PriceID),
			Quantity: stripe.Int64(1),
		}}
		// Метаданные подписки попадают в события customer.subscription.*.
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{Metadata: req.Metadata}
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный режим оплаты")
	}

	s, err := g.checkout.New(params)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeGatewayError, "не удалось создать checkout-сессию")
	}
	return &repository.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := g.portal.New(params)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeGatewayError, "не удалось открыть портал оплаты")
	}
	return s.URL, nil
}
