package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const testSecret = "whsec_test"

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()

	t.Run("valid", func(t *testing.T) {
		header := SignatureHeader(payload, testSecret, now.Add(-time.Minute))
		assert.NoError(t, VerifySignature(payload, header, testSecret, DefaultTolerance))
	})

	t.Run("any v1 may match", func(t *testing.T) {
		good := SignatureHeader(payload, testSecret, now)
		ts, sig, _ := strings.Cut(good, ",")
		header := ts + ",v1=deadbeef," + sig
		assert.NoError(t, VerifySignature(payload, header, testSecret, DefaultTolerance))
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := SignatureHeader(payload, "whsec_other", now)
		assert.ErrorIs(t, VerifySignature(payload, header, testSecret, DefaultTolerance), apperror.ErrWebhookSignature)
	})

	t.Run("tampered payload", func(t *testing.T) {
		header := SignatureHeader(payload, testSecret, now)
		assert.Error(t, VerifySignature([]byte(`{"id":"evt_2"}`), header, testSecret, DefaultTolerance))
	})

	t.Run("outside tolerance", func(t *testing.T) {
		header := SignatureHeader(payload, testSecret, now.Add(-10*time.Minute))
		err := VerifySignature(payload, header, testSecret, DefaultTolerance)
		assert.ErrorIs(t, err, apperror.ErrWebhookSignature)
		assert.ErrorIs(t, err, webhook.ErrTooOld)
	})

	t.Run("zero tolerance accepts old signature", func(t *testing.T) {
		header := SignatureHeader(payload, testSecret, now.Add(-24*time.Hour))
		assert.NoError(t, VerifySignature(payload, header, testSecret, 0))
	})

	t.Run("malformed header", func(t *testing.T) {
		for _, header := range []string{"", "garbage", "t=abc,v1=00", "v1=00", "t=1700000000"} {
			assert.ErrorIs(t, VerifySignature(payload, header, testSecret, DefaultTolerance), apperror.ErrWebhookSignature, header)
		}
	})

	t.Run("empty secret", func(t *testing.T) {
		header := SignatureHeader(payload, "", now)
		assert.Error(t, VerifySignature(payload, header, "", DefaultTolerance))
	})
}

func TestParseEvent_CheckoutCompleted(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"mode": "payment",
			"payment_status": "paid",
			"customer": "cus_1",
			"amount_total": 4900,
			"currency": "eur",
			"metadata": {"booking_id": "b-1"}
		}}
	}`)

	evt, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, entity.PaymentEventCheckoutCompleted, evt.Type)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), evt.Created)
	require.NotNil(t, evt.Checkout)
	assert.Equal(t, "cs_test_1", evt.Checkout.ID)
	assert.Equal(t, "payment", evt.Checkout.Mode)
	assert.Equal(t, "paid", evt.Checkout.PaymentStatus)
	assert.Equal(t, "cus_1", evt.Checkout.CustomerID)
	assert.Equal(t, int64(4900), evt.Checkout.AmountTotal)
	assert.Equal(t, "b-1", evt.Checkout.Metadata["booking_id"])
}

func TestParseEvent_Subscription(t *testing.T) {
	payload := []byte(`{
		"id": "evt_2",
		"type": "customer.subscription.updated",
		"created": 1700000000,
		"data": {"object": {
			"id": "sub_1",
			"object": "subscription",
			"customer": "cus_1",
			"status": "active",
			"current_period_end": 1702592000,
			"cancel_at_period_end": true,
			"items": {"object": "list", "data": [{"id": "si_1", "price": {"id": "price_month"}}]},
			"metadata": {"user_id": "u-1"}
		}}
	}`)

	evt, err := ParseEvent(payload)
	require.NoError(t, err)
	require.NotNil(t, evt.Sub)
	assert.Equal(t, "active", evt.Sub.Status)
	assert.Equal(t, "price_month", evt.Sub.PriceID)
	assert.True(t, evt.Sub.CancelAtPeriodEnd)
	require.NotNil(t, evt.Sub.CurrentPeriodEnd)
	assert.Equal(t, int64(1702592000), evt.Sub.CurrentPeriodEnd.Unix())
	assert.Equal(t, "u-1", evt.Sub.Metadata["user_id"])
}

func TestParseEvent_Invoice(t *testing.T) {
	payload := []byte(`{
		"id": "evt_3",
		"type": "invoice.payment_failed",
		"data": {"object": {
			"id": "in_1",
			"object": "invoice",
			"customer": "cus_1",
			"status": "open",
			"hosted_invoice_url": "https://invoice.example/in_1",
			"amount_due": 1900,
			"amount_paid": 0,
			"currency": "eur",
			"created": 1700000000
		}}
	}`)

	evt, err := ParseEvent(payload)
	require.NoError(t, err)
	require.NotNil(t, evt.Invoice)
	assert.Equal(t, "cus_1", evt.Invoice.CustomerID)
	assert.Equal(t, int64(1900), evt.Invoice.AmountDue)
	assert.Equal(t, "https://invoice.example/in_1", evt.Invoice.HostedURL)
}

func TestParseEvent_UnknownTypeAndErrors(t *testing.T) {
	evt, err := ParseEvent([]byte(`{"id":"evt_4","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`))
	require.NoError(t, err)
	assert.Nil(t, evt.Checkout)
	assert.Nil(t, evt.Sub)
	assert.Nil(t, evt.Invoice)

	_, err = ParseEvent([]byte(`not json`))
	assert.Equal(t, apperror.ErrCodeBadRequest, apperror.CodeOf(err))

	_, err = ParseEvent([]byte(`{"type":"invoice.paid"}`))
	assert.Error(t, err)
}

type fakeCheckout struct {
	params *stripe.CheckoutSessionParams
	err    error
}

func (f *fakeCheckout) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil
}

type fakePortal struct {
	params *stripe.BillingPortalSessionParams
}

func (f *fakePortal) New(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	f.params = params
	return &stripe.BillingPortalSession{URL: "https://portal.example/s"}, nil
}

func TestStripeGateway_PaymentCheckout(t *testing.T) {
	checkout := &fakeCheckout{}
	g := &StripeGateway{checkout: checkout, portal: &fakePortal{}}

	amount := valueobject.Money{Amount: decimal.RequireFromString("49.00"), Currency: "EUR"}
	s, err := g.CreateCheckoutSession(context.Background(), repository.CheckoutRequest{
		Mode:        repository.CheckoutModePayment,
		Amount:      amount,
		ProductName: "Hebammen-Vermittlung",
		Metadata:    map[string]string{"booking_id": "b-1"},
		SuccessURL:  "https://app.example/ok",
		CancelURL:   "https://app.example/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", s.ID)
	assert.Equal(t, "https://checkout.example/cs_1", s.URL)

	p := checkout.params
	require.Len(t, p.LineItems, 1)
	assert.Equal(t, int64(4900), *p.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "eur", *p.LineItems[0].PriceData.Currency)
	assert.Equal(t, "b-1", p.Metadata["booking_id"])
	assert.Equal(t, "b-1", p.PaymentIntentData.Metadata["booking_id"])
}

func TestStripeGateway_SubscriptionCheckout(t *testing.T) {
	checkout := &fakeCheckout{}
	g := &StripeGateway{checkout: checkout, portal: &fakePortal{}}

	_, err := g.CreateCheckoutSession(context.Background(), repository.CheckoutRequest{
		Mode:     repository.CheckoutModeSubscription,
		PriceID:  "price_month",
		Metadata: map[string]string{"user_id": "u-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "price_month", *checkout.params.LineItems[0].Price)
	assert.Equal(t, "u-1", checkout.params.SubscriptionData.Metadata["user_id"])

	_, err = g.CreateCheckoutSession(context.Background(), repository.CheckoutRequest{Mode: repository.CheckoutModeSubscription})
	assert.Equal(t, apperror.ErrCodeGatewayError, apperror.CodeOf(err))
}

func TestStripeGateway_Errors(t *testing.T) {
	g := &StripeGateway{checkout: &fakeCheckout{err: errors.New("card_declined")}, portal: &fakePortal{}}

	_, err := g.CreateCheckoutSession(context.Background(), repository.CheckoutRequest{Mode: repository.CheckoutModePayment, Amount: valueobject.MoneyFromCents(100, "eur")})
	assert.Equal(t, apperror.ErrCodeGatewayError, apperror.CodeOf(err))

	_, err = g.CreateCheckoutSession(context.Background(), repository.CheckoutRequest{Mode: "setup"})
	assert.True(t, apperror.IsValidation(err))
}

func TestStripeGateway_Portal(t *testing.T) {
	portal := &fakePortal{}
	g := &StripeGateway{checkout: &fakeCheckout{}, portal: portal}

	url, err := g.CreatePortalSession(context.Background(), "cus_1", "https://app.example/dashboard/billing")
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example/s", url)
	assert.Equal(t, "cus_1", *portal.params.Customer)
}
