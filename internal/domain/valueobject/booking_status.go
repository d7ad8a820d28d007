package valueobject

import (
	"strings"

	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type BookingStatus string

const (
	BookingStatusRequested BookingStatus = "REQUESTED"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusDeclined  BookingStatus = "DECLINED"
	BookingStatusPaid      BookingStatus = "PAID"
	BookingStatusCanceled  BookingStatus = "CANCELED"
)

// bookingTransitions: из статуса -> в статус -> кто может выполнить переход.
var bookingTransitions = map[BookingStatus]map[BookingStatus][]Role{
	BookingStatusRequested: {
		BookingStatusConfirmed: {RoleMidwife},
		BookingStatusDeclined:  {RoleMidwife},
		BookingStatusCanceled:  {RoleClient},
	},
	BookingStatusConfirmed: {
		BookingStatusPaid:     {RolePaymentHandler},
		BookingStatusCanceled: {RoleClient, RoleMidwife},
	},
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusRequested, BookingStatusConfirmed, BookingStatusDeclined, BookingStatusPaid, BookingStatusCanceled:
		return true
	}
	return false
}

func (s BookingStatus) IsActive() bool {
	return s == BookingStatusRequested || s == BookingStatusConfirmed
}

// IsCalendarVisible сообщает, попадает ли бронирование в календарный фид акушерки.
func (s BookingStatus) IsCalendarVisible() bool {
	return s == BookingStatusConfirmed || s == BookingStatusPaid
}

func (s BookingStatus) String() string {
	return string(s)
}

func NewBookingStatus(status string) (BookingStatus, error) {
	s := BookingStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус бронирования")
	}
	return s, nil
}

// ValidateTransition решает, может ли actor перевести бронирование из from в to.
// Функция ничего не меняет: вызывающий код сам выполняет условную запись.
func ValidateTransition(from, to BookingStatus, actor Role) (BookingStatus, error) {
	if !from.IsValid() || !to.IsValid() {
		return "", apperror.InvalidTransition(string(from), string(to))
	}
	if from == to {
		return to, nil
	}

	allowed, ok := bookingTransitions[from][to]
	if !ok {
		return "", apperror.InvalidTransition(string(from), string(to))
	}
	for _, role := range allowed {
		if role == actor {
			return to, nil
		}
	}
	return "", apperror.InvalidTransition(string(from), string(to))
}
