package entity

import "time"

const (
	PaymentEventCheckoutCompleted   = "checkout.session.completed"
	PaymentEventSubscriptionCreated = "customer.subscription.created"
	PaymentEventSubscriptionUpdated = "customer.subscription.updated"
	PaymentEventSubscriptionDeleted = "customer.subscription.deleted"
	PaymentEventInvoicePaid         = "invoice.paid"
	PaymentEventInvoiceFailed       = "invoice.payment_failed"

	// FeatureExpressBooking помечает оплату экспресс-заявки сразу нескольким акушеркам.
	FeatureExpressBooking = "express_booking"
)

// PaymentEvent описывает проверенное событие платёжного провайдера.
// Заполнен только тот объект, который соответствует типу события.
type PaymentEvent struct {
	ID       string
	Type     string
	Created  time.Time
	Checkout *CheckoutSessionObject
	Sub      *SubscriptionObject
	Invoice  *InvoiceObject
}

type CheckoutSessionObject struct {
	ID                string
	Mode              string
	PaymentStatus     string
	CustomerID        string
	SubscriptionID    string
	ClientReferenceID string
	AmountTotal       int64
	Currency          string
	Metadata          map[string]string
}

type SubscriptionObject struct {
	ID                string
	CustomerID        string
	Status            string
	PriceID           string
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
	Metadata          map[string]string
}

type InvoiceObject struct {
	ID         string
	CustomerID string
	Status     string
	HostedURL  string
	AmountDue  int64
	AmountPaid int64
	Currency   string
	Created    time.Time
}
