package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/event"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/booking"
)

type PaymentMarker interface {
	Execute(ctx context.Context, ref booking.PaymentRef) error
}

type BookingCreator interface {
	CreateFor(ctx context.Context, clientID, midwifeID uuid.UUID) (*entity.Booking, error)
}

// ProcessWebhookUseCase обрабатывает проверенные события платёжного провайдера.
// Каждое событие применяется не более одного раза.
type ProcessWebhookUseCase struct {
	events      repository.WebhookEventRepository
	markPaid    PaymentMarker
	bookings    BookingCreator
	plans       *SetPlanUseCase
	profileRepo repository.ProfileRepository
	subRepo     repository.SubscriptionRepository
	invoiceRepo repository.InvoiceRepository
}

func NewProcessWebhookUseCase(
	events repository.WebhookEventRepository,
	markPaid PaymentMarker,
	bookings BookingCreator,
	plans *SetPlanUseCase,
	profileRepo repository.ProfileRepository,
	subRepo repository.SubscriptionRepository,
	invoiceRepo repository.InvoiceRepository,
) *ProcessWebhookUseCase {
	return &ProcessWebhookUseCase{
		events:      events,
		markPaid:    markPaid,
		bookings:    bookings,
		plans:       plans,
		profileRepo: profileRepo,
		subRepo:     subRepo,
		invoiceRepo: invoiceRepo,
	}
}

func (uc *ProcessWebhookUseCase) Execute(ctx context.Context, evt *entity.PaymentEvent) error {
	if evt == nil || evt.ID == "" {
		return apperror.New(apperror.ErrCodeValidation, "событие без идентификатора")
	}

	// События бронирований уходят подписчикам только после фиксации транзакции.
	var processed bool
	err := event.Deferred(ctx, func(ctx context.Context) error {
		var err error
		processed, err = uc.events.Begin(ctx, evt.ID, evt.Type, func(ctx context.Context) error {
			return uc.dispatch(ctx, evt)
		})
		return err
	})
	if err != nil {
		return err
	}
	if !processed {
		logger.WithFields(logrus.Fields{
			"event_id": evt.ID,
			"type":     evt.Type,
		}).Info("webhook: повторная доставка события, пропускаем")
	}
	return nil
}

func (uc *ProcessWebhookUseCase) dispatch(ctx context.Context, evt *entity.PaymentEvent) error {
	switch evt.Type {
	case entity.PaymentEventCheckoutCompleted:
		return uc.handleCheckout(ctx, evt)
	case entity.PaymentEventSubscriptionCreated, entity.PaymentEventSubscriptionUpdated, entity.PaymentEventSubscriptionDeleted:
		return uc.handleSubscription(ctx, evt)
	case entity.PaymentEventInvoicePaid, entity.PaymentEventInvoiceFailed:
		return uc.handleInvoice(ctx, evt)
	}
	return nil
}

func (uc *ProcessWebhookUseCase) handleCheckout(ctx context.Context, evt *entity.PaymentEvent) error {
	s := evt.Checkout
	if s == nil {
		return nil
	}

	if s.Metadata["feature"] == entity.FeatureExpressBooking {
		return uc.createExpressBookings(ctx, s)
	}

	switch s.Mode {
	case repository.CheckoutModePayment:
		if s.PaymentStatus == "unpaid" {
			logger.WithFields(logrus.Fields{"session_id": s.ID}).Info("webhook: оплата сессии ещё не поступила")
			return nil
		}
		ref := booking.PaymentRef{
			SessionID: s.ID,
			BookingID: s.Metadata["booking_id"],
			PaidAt:    evt.Created,
		}
		if s.AmountTotal > 0 {
			amount := valueobject.MoneyFromCents(s.AmountTotal, s.Currency)
			ref.Amount = &amount
		}
		return uc.markPaid.Execute(ctx, ref)

	case repository.CheckoutModeSubscription:
		userID, ok := parseUserID(s.Metadata["user_id"], s.ClientReferenceID)
		if !ok || s.CustomerID == "" {
			return nil
		}
		if err := uc.profileRepo.SetStripeCustomer(ctx, userID, s.CustomerID); err != nil && !apperror.IsNotFound(err) {
			return err
		}
	}
	return nil
}

func (uc *ProcessWebhookUseCase) createExpressBookings(ctx context.Context, s *entity.CheckoutSessionObject) error {
	log := logger.WithFields(logrus.Fields{"session_id": s.ID})

	clientID, err := uuid.Parse(s.Metadata["client_id"])
	if err != nil {
		log.Warn("webhook: экспресс-заявка без client_id")
		return nil
	}

	created := 0
	for _, raw := range strings.Split(s.Metadata["midwife_ids"], ",") {
		midwifeID, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		if _, err := uc.bookings.CreateFor(ctx, clientID, midwifeID); err != nil {
			switch apperror.CodeOf(err) {
			case apperror.ErrCodeAlreadyActive, apperror.ErrCodeCooldown, apperror.ErrCodeNotFound, apperror.ErrCodeValidation:
				log.WithFields(logrus.Fields{
					"midwife_id": midwifeID,
					"reason":     apperror.CodeOf(err),
				}).Info("webhook: экспресс-заявка к акушерке пропущена")
				continue
			}
			return err
		}
		created++
	}

	log.WithFields(logrus.Fields{
		"client_id": clientID,
		"created":   created,
	}).Info("webhook: экспресс-заявки созданы")
	return nil
}

func (uc *ProcessWebhookUseCase) handleSubscription(ctx context.Context, evt *entity.PaymentEvent) error {
	sub := evt.Sub
	if sub == nil {
		return nil
	}

	userID, ok := uc.resolveUser(ctx, sub.Metadata["user_id"], sub.CustomerID)
	if !ok {
		logger.WithFields(logrus.Fields{
			"subscription_id": sub.ID,
			"customer_id":     sub.CustomerID,
		}).Warn("webhook: не удалось определить пользователя подписки")
		return nil
	}

	record := &entity.Subscription{
		UserID:               userID,
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     sub.CustomerID,
		Status:               sub.Status,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		UpdatedAt:            time.Now().UTC(),
	}
	if sub.PriceID != "" {
		record.PriceID = &sub.PriceID
	}
	if err := uc.subRepo.Upsert(ctx, record); err != nil {
		return err
	}

	plan := record.Plan()
	if evt.Type == entity.PaymentEventSubscriptionDeleted {
		plan = valueobject.PlanFree
	}
	return uc.plans.Execute(ctx, SetPlanInput{
		UserID:     userID,
		Plan:       plan,
		CustomerID: sub.CustomerID,
	})
}

func (uc *ProcessWebhookUseCase) handleInvoice(ctx context.Context, evt *entity.PaymentEvent) error {
	inv := evt.Invoice
	if inv == nil {
		return nil
	}

	userID, ok := uc.resolveUser(ctx, "", inv.CustomerID)
	if !ok {
		logger.WithFields(logrus.Fields{"invoice_id": inv.ID}).Warn("webhook: счёт без известного клиента")
		return nil
	}

	amount := inv.AmountDue
	if inv.AmountPaid > 0 {
		amount = inv.AmountPaid
	}
	invoice := &entity.Invoice{
		UserID:          userID,
		StripeInvoiceID: inv.ID,
		Amount:          valueobject.MoneyFromCents(amount, inv.Currency),
		CreatedAt:       inv.Created,
	}
	if inv.HostedURL != "" {
		invoice.HostedURL = &inv.HostedURL
	}
	if inv.Status != "" {
		invoice.Status = &inv.Status
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = evt.Created
	}
	if err := uc.invoiceRepo.Upsert(ctx, invoice); err != nil {
		return err
	}

	if evt.Type == entity.PaymentEventInvoiceFailed {
		return uc.plans.Execute(ctx, SetPlanInput{UserID: userID, Plan: valueobject.PlanFree})
	}
	return nil
}

// resolveUser ищет пользователя по metadata, затем по сохранённому customer id.
func (uc *ProcessWebhookUseCase) resolveUser(ctx context.Context, metadataUserID, customerID string) (uuid.UUID, bool) {
	if id, ok := parseUserID(metadataUserID); ok {
		return id, true
	}
	if customerID == "" {
		return uuid.Nil, false
	}
	if sub, err := uc.subRepo.FindByCustomer(ctx, customerID); err == nil {
		return sub.UserID, true
	}
	if profile, err := uc.profileRepo.FindByStripeCustomer(ctx, customerID); err == nil {
		return profile.ID, true
	}
	return uuid.Nil, false
}

func parseUserID(candidates ...string) (uuid.UUID, bool) {
	for _, raw := range candidates {
		if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}
