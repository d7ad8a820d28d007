package admin_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/admin"
)

type mockBookingRepository struct {
	repository.BookingRepository
	recent []*entity.Booking
}

func (m *mockBookingRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Booking, error) {
	return m.recent, nil
}

type mockPaymentRepository struct {
	recent []*entity.Payment
}

func (m *mockPaymentRepository) Record(ctx context.Context, p *entity.Payment) error { return nil }

func (m *mockPaymentRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Payment, error) {
	return m.recent, nil
}

func TestGetOverview_TotalsInDecimal(t *testing.T) {
	bookings := &mockBookingRepository{recent: []*entity.Booking{
		{ID: uuid.New(), Status: valueobject.BookingStatusRequested},
		{ID: uuid.New(), Status: valueobject.BookingStatusConfirmed},
		{ID: uuid.New(), Status: valueobject.BookingStatusPaid},
		{ID: uuid.New(), Status: valueobject.BookingStatusDeclined},
	}}
	payments := &mockPaymentRepository{recent: []*entity.Payment{
		{ID: uuid.New(), Amount: valueobject.MoneyFromCents(19900, "eur")},
		{ID: uuid.New(), Amount: valueobject.MoneyFromCents(10, "eur")},
		{ID: uuid.New(), Amount: valueobject.MoneyFromCents(5000, "usd")},
	}}
	uc := admin.NewGetOverviewUseCase(bookings, payments, "")

	overview, err := uc.Execute(context.Background(), valueobject.Actor{ID: uuid.New(), Role: valueobject.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, 2, overview.OpenBookings)
	assert.Equal(t, 1, overview.PaidBookings)
	assert.Equal(t, "199.10 EUR", overview.PaidTotal.String())
	assert.Len(t, overview.Payments, 3)
}

func TestGetOverview_AdminOnly(t *testing.T) {
	uc := admin.NewGetOverviewUseCase(&mockBookingRepository{}, &mockPaymentRepository{}, "eur")
	_, err := uc.Execute(context.Background(), valueobject.Actor{ID: uuid.New(), Role: valueobject.RoleMidwife})
	assert.True(t, apperror.IsForbidden(err))
}
