package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/event"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

// PaymentRef ссылается на бронирование из события об успешной оплате.
type PaymentRef struct {
	SessionID string
	BookingID string
	PaidAt    time.Time
	Amount    *valueobject.Money
}

// MarkPaidUseCase переводит подтверждённое бронирование в PAID по событию платёжного провайдера.
// Повторная доставка события и события для чужих объектов не считаются ошибкой.
// Событие о смене статуса публикуется только после того, как записан платёж.
type MarkPaidUseCase struct {
	bookingRepo repository.BookingRepository
	paymentRepo repository.PaymentRepository
	writer      statusWriter
}

func NewMarkPaidUseCase(
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	publisher event.Publisher,
) *MarkPaidUseCase {
	return &MarkPaidUseCase{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		writer:      newStatusWriter(bookingRepo, publisher),
	}
}

func (uc *MarkPaidUseCase) Execute(ctx context.Context, ref PaymentRef) error {
	return event.Deferred(ctx, func(ctx context.Context) error {
		return uc.execute(ctx, ref)
	})
}

func (uc *MarkPaidUseCase) execute(ctx context.Context, ref PaymentRef) error {
	log := logger.WithFields(logrus.Fields{
		"session_id": ref.SessionID,
		"booking_id": ref.BookingID,
	})

	booking, err := uc.resolve(ctx, ref)
	if err != nil {
		if apperror.IsNotFound(err) {
			log.Info("payment: бронирование для оплаты не найдено, событие пропущено")
			return nil
		}
		return err
	}

	switch booking.Status {
	case valueobject.BookingStatusPaid:
		return uc.recordPayment(ctx, booking, ref)
	case valueobject.BookingStatusConfirmed:
	default:
		log.WithField("status", booking.Status).Info("payment: бронирование не ожидает оплаты, событие пропущено")
		return nil
	}

	paidAt := ref.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}

	updated, _, err := uc.writer.apply(ctx, valueobject.PaymentHandlerActor(), booking, valueobject.BookingStatusPaid, nil, paidAt)
	if err != nil {
		if apperror.IsInvalidTransition(err) {
			log.WithField("error", err.Error()).Info("payment: статус бронирования изменился до оплаты")
			return nil
		}
		return err
	}

	return uc.recordPayment(ctx, updated, ref)
}

func (uc *MarkPaidUseCase) resolve(ctx context.Context, ref PaymentRef) (*entity.Booking, error) {
	if ref.SessionID != "" {
		booking, err := uc.bookingRepo.FindByCheckoutSession(ctx, ref.SessionID)
		if err == nil {
			return booking, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}
	}

	id, err := uuid.Parse(ref.BookingID)
	if err != nil {
		return nil, apperror.ErrBookingNotFound
	}
	return uc.bookingRepo.FindByID(ctx, id)
}

func (uc *MarkPaidUseCase) recordPayment(ctx context.Context, booking *entity.Booking, ref PaymentRef) error {
	if uc.paymentRepo == nil || ref.SessionID == "" || !booking.IsPaid() {
		return nil
	}

	amount := booking.Fee
	if ref.Amount != nil {
		amount = *ref.Amount
	}
	return uc.paymentRepo.Record(ctx, &entity.Payment{
		ID:        uuid.New(),
		BookingID: booking.ID,
		SessionID: ref.SessionID,
		Amount:    amount,
		PaidAt:    *booking.PaidAt,
		CreatedAt: time.Now().UTC(),
	})
}
