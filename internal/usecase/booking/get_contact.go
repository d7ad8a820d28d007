package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type Contact struct {
	BookingID     uuid.UUID
	CounterpartID uuid.UUID
	DisplayName   string
	Status        valueobject.BookingStatus
	Phone         string
	Masked        bool
}

// GetContactUseCase отдаёт телефон второй стороны бронирования.
// Полный номер возвращается только после оплаты; при любой внутренней ошибке номер скрыт.
type GetContactUseCase struct {
	bookingRepo repository.BookingRepository
	profileRepo repository.ProfileRepository
}

func NewGetContactUseCase(bookingRepo repository.BookingRepository, profileRepo repository.ProfileRepository) *GetContactUseCase {
	return &GetContactUseCase{bookingRepo: bookingRepo, profileRepo: profileRepo}
}

func (uc *GetContactUseCase) Execute(ctx context.Context, actor valueobject.Actor, bookingID uuid.UUID) (*Contact, error) {
	booking, err := uc.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	counterpartID, ok := booking.Counterpart(actor.ID)
	if !ok {
		logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"user_id":    actor.ID,
		}).Warn("contact: попытка получить контакт не участником бронирования")
		return nil, apperror.ErrForbidden
	}

	contact := &Contact{
		BookingID:     booking.ID,
		CounterpartID: counterpartID,
		Status:        booking.Status,
		Phone:         valueobject.PhoneUnknown,
		Masked:        true,
	}

	profile, err := uc.profileRepo.FindByID(ctx, counterpartID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"error":      err.Error(),
		}).Error("contact: не удалось загрузить профиль второй стороны")
		return contact, nil
	}

	raw := ""
	if profile.Phone != nil {
		raw = *profile.Phone
	}
	contact.DisplayName = profile.DisplayName
	contact.Phone, contact.Masked = booking.DiscloseCounterpartPhone(raw)
	return contact, nil
}
