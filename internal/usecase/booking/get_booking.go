package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type GetBookingUseCase struct {
	bookingRepo repository.BookingRepository
}

func NewGetBookingUseCase(bookingRepo repository.BookingRepository) *GetBookingUseCase {
	return &GetBookingUseCase{bookingRepo: bookingRepo}
}

func (uc *GetBookingUseCase) Execute(ctx context.Context, actor valueobject.Actor, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := uc.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !booking.IsParty(actor.ID) {
		return nil, apperror.ErrForbidden
	}
	return booking, nil
}

type ListBookingsInput struct {
	Status string
	Limit  int
	Offset int
}

type ListBookingsUseCase struct {
	bookingRepo repository.BookingRepository
}

func NewListBookingsUseCase(bookingRepo repository.BookingRepository) *ListBookingsUseCase {
	return &ListBookingsUseCase{bookingRepo: bookingRepo}
}

func (uc *ListBookingsUseCase) Execute(ctx context.Context, actor valueobject.Actor, input ListBookingsInput) ([]*entity.Booking, int, error) {
	filter, err := filterFor(actor)
	if err != nil {
		return nil, 0, err
	}
	if input.Status != "" {
		status, err := valueobject.NewBookingStatus(input.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Statuses = []valueobject.BookingStatus{status}
	}
	filter.Limit = input.Limit
	filter.Offset = input.Offset

	return uc.bookingRepo.List(ctx, filter)
}

// Stats содержит счётчики для панели клиента или акушерки.
type Stats struct {
	ByStatus map[valueobject.BookingStatus]int
	Open     int
	Payable  int
	Total    int
}

type GetStatsUseCase struct {
	bookingRepo repository.BookingRepository
}

func NewGetStatsUseCase(bookingRepo repository.BookingRepository) *GetStatsUseCase {
	return &GetStatsUseCase{bookingRepo: bookingRepo}
}

func (uc *GetStatsUseCase) Execute(ctx context.Context, actor valueobject.Actor) (*Stats, error) {
	filter, err := filterFor(actor)
	if err != nil {
		return nil, err
	}

	counts, err := uc.bookingRepo.CountByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByStatus: make(map[valueobject.BookingStatus]int, len(counts))}
	for status, n := range counts {
		stats.ByStatus[status] = n
		stats.Total += n
		if status.IsActive() {
			stats.Open += n
		}
	}
	stats.Payable = counts[valueobject.BookingStatusConfirmed]
	return stats, nil
}

func filterFor(actor valueobject.Actor) (repository.BookingFilter, error) {
	var filter repository.BookingFilter
	switch actor.Role {
	case valueobject.RoleClient:
		id := actor.ID
		filter.ClientID = &id
	case valueobject.RoleMidwife:
		id := actor.ID
		filter.MidwifeID = &id
	case valueobject.RoleAdmin:
	default:
		return filter, apperror.ErrForbidden
	}
	return filter, nil
}
