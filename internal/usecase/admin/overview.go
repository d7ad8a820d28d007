package admin

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const recentLimit = 20

type Overview struct {
	Bookings     []*entity.Booking
	Payments     []*entity.Payment
	PaidTotal    valueobject.Money
	OpenBookings int
	PaidBookings int
}

type GetOverviewUseCase struct {
	bookingRepo repository.BookingRepository
	paymentRepo repository.PaymentRepository
	currency    string
}

func NewGetOverviewUseCase(bookingRepo repository.BookingRepository, paymentRepo repository.PaymentRepository, currency string) *GetOverviewUseCase {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &GetOverviewUseCase{bookingRepo: bookingRepo, paymentRepo: paymentRepo, currency: currency}
}

// Execute собирает последние бронирования и платежи для панели администратора.
func (uc *GetOverviewUseCase) Execute(ctx context.Context, actor valueobject.Actor) (*Overview, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	bookings, err := uc.bookingRepo.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		Bookings:  bookings,
		Payments:  payments,
		PaidTotal: valueobject.Money{Amount: decimal.Zero, Currency: uc.currency},
	}
	for _, b := range bookings {
		if b.Status.IsActive() {
			overview.OpenBookings++
		}
		if b.Status == valueobject.BookingStatusPaid {
			overview.PaidBookings++
		}
	}
	for _, p := range payments {
		if p.Amount.Currency == uc.currency {
			overview.PaidTotal = overview.PaidTotal.Add(p.Amount)
		}
	}
	return overview, nil
}
