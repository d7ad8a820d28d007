package payment

import (
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v76"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

// ParseEvent разбирает тело webhook в PaymentEvent. Вызывать только после VerifySignature.
// Для неизвестных типов объект события не заполняется.
func ParseEvent(payload []byte) (*entity.PaymentEvent, error) {
	var evt stripe.Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректное тело события")
	}
	if evt.ID == "" {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "событие без идентификатора")
	}

	out := &entity.PaymentEvent{
		ID:      evt.ID,
		Type:    string(evt.Type),
		Created: unixOrZero(evt.Created),
	}
	if evt.Data == nil || len(evt.Data.Raw) == 0 {
		return out, nil
	}

	switch out.Type {
	case entity.PaymentEventCheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &s); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректная checkout-сессия")
		}
		out.Checkout = checkoutFromStripe(&s)

	case entity.PaymentEventSubscriptionCreated, entity.PaymentEventSubscriptionUpdated, entity.PaymentEventSubscriptionDeleted:
		var s stripe.Subscription
		if err := json.Unmarshal(evt.Data.Raw, &s); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректная подписка")
		}
		out.Sub = subscriptionFromStripe(&s)

	case entity.PaymentEventInvoicePaid, entity.PaymentEventInvoiceFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(evt.Data.Raw, &inv); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректный счёт")
		}
		out.Invoice = invoiceFromStripe(&inv)
	}

	return out, nil
}

func checkoutFromStripe(s *stripe.CheckoutSession) *entity.CheckoutSessionObject {
	obj := &entity.CheckoutSessionObject{
		ID:                s.ID,
		Mode:              string(s.Mode),
		PaymentStatus:     string(s.PaymentStatus),
		ClientReferenceID: s.ClientReferenceID,
		AmountTotal:       s.AmountTotal,
		Currency:          string(s.Currency),
		Metadata:          s.Metadata,
	}
	if s.Customer != nil {
		obj.CustomerID = s.Customer.ID
	}
	if s.Subscription != nil {
		obj.SubscriptionID = s.Subscription.ID
	}
	if obj.Metadata == nil {
		obj.Metadata = map[string]string{}
	}
	return obj
}

func subscriptionFromStripe(s *stripe.Subscription) *entity.SubscriptionObject {
	obj := &entity.SubscriptionObject{
		ID:                s.ID,
		Status:            string(s.Status),
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		Metadata:          s.Metadata,
	}
	if s.Customer != nil {
		obj.CustomerID = s.Customer.ID
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil {
		obj.PriceID = s.Items.Data[0].Price.ID
	}
	if s.CurrentPeriodEnd > 0 {
		end := time.Unix(s.CurrentPeriodEnd, 0).UTC()
		obj.CurrentPeriodEnd = &end
	}
	if obj.Metadata == nil {
		obj.Metadata = map[string]string{}
	}
	return obj
}

func invoiceFromStripe(inv *stripe.Invoice) *entity.InvoiceObject {
	obj := &entity.InvoiceObject{
		ID:         inv.ID,
		Status:     string(inv.Status),
		HostedURL:  inv.HostedInvoiceURL,
		AmountDue:  inv.AmountDue,
		AmountPaid: inv.AmountPaid,
		Currency:   string(inv.Currency),
		Created:    unixOrZero(inv.Created),
	}
	if inv.Customer != nil {
		obj.CustomerID = inv.Customer.ID
	}
	return obj
}

func unixOrZero(ts int64) time.Time {
	if ts <= 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
