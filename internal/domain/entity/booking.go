package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const maxBookingNoteLength = 1000

// BoostAfter задаёт, через сколько заявка без ответа поднимается для PRO-акушерок.
const BoostAfter = 24 * time.Hour

type Booking struct {
	ID                uuid.UUID
	ClientID          uuid.UUID
	MidwifeID         uuid.UUID
	Status            valueobject.BookingStatus
	Note              *string
	IsBoosted         bool
	CheckoutSessionID *string
	CheckoutURL       *string
	Fee               valueobject.Money
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PaidAt            *time.Time
}

func NewBooking(clientID, midwifeID uuid.UUID, fee valueobject.Money) (*Booking, error) {
	if clientID == uuid.Nil || midwifeID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан клиент или акушерка")
	}
	if clientID == midwifeID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя отправить заявку самому себе")
	}

	now := time.Now().UTC()
	return &Booking{
		ID:        uuid.New(),
		ClientID:  clientID,
		MidwifeID: midwifeID,
		Status:    valueobject.BookingStatusRequested,
		Fee:       fee,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (b *Booking) IsParty(userID uuid.UUID) bool {
	return userID != uuid.Nil && (userID == b.ClientID || userID == b.MidwifeID)
}

// Counterpart возвращает вторую сторону бронирования для участника userID.
func (b *Booking) Counterpart(userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case b.ClientID:
		return b.MidwifeID, true
	case b.MidwifeID:
		return b.ClientID, true
	}
	return uuid.Nil, false
}

// Authorize проверяет, что actor действует от имени своей стороны бронирования.
func (b *Booking) Authorize(actor valueobject.Actor) error {
	switch actor.Role {
	case valueobject.RolePaymentHandler:
		return nil
	case valueobject.RoleMidwife:
		if actor.ID == b.MidwifeID {
			return nil
		}
	case valueobject.RoleClient:
		if actor.ID == b.ClientID {
			return nil
		}
	}
	return apperror.ErrForbidden
}

// PlanTransition проверяет переход без изменения сущности и возвращает исходный статус.
func (b *Booking) PlanTransition(actor valueobject.Actor, to valueobject.BookingStatus) (valueobject.BookingStatus, error) {
	if err := b.Authorize(actor); err != nil {
		return "", err
	}
	if _, err := valueobject.ValidateTransition(b.Status, to, actor.Role); err != nil {
		return "", err
	}
	return b.Status, nil
}

// ApplyTransition меняет статус в памяти; paidAt выставляется только для PAID.
func (b *Booking) ApplyTransition(to valueobject.BookingStatus, note *string, at time.Time) {
	if b.Status == to {
		return
	}
	b.Status = to
	if to == valueobject.BookingStatusDeclined && note != nil {
		trimmed := strings.TrimSpace(*note)
		if trimmed != "" {
			b.Note = &trimmed
		}
	}
	if to == valueobject.BookingStatusPaid {
		paidAt := at.UTC()
		b.PaidAt = &paidAt
	} else {
		b.PaidAt = nil
	}
	b.UpdatedAt = at.UTC()
}

func (b *Booking) IsPaid() bool {
	return b.Status == valueobject.BookingStatusPaid && b.PaidAt != nil
}

// DiscloseCounterpartPhone отдаёт номер второй стороны по правилу раскрытия.
func (b *Booking) DiscloseCounterpartPhone(raw string) (string, bool) {
	return valueobject.DisclosePhone(b.Status, b.PaidAt != nil, raw)
}

func ValidateBookingNote(note *string) error {
	if note == nil {
		return nil
	}
	if len([]rune(*note)) > maxBookingNoteLength {
		return apperror.New(apperror.ErrCodeValidation, "комментарий слишком длинный")
	}
	return nil
}
