package dispute

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type OpenDisputeUseCase struct {
	disputeRepo repository.DisputeRepository
	bookingRepo repository.BookingRepository
}

func NewOpenDisputeUseCase(disputeRepo repository.DisputeRepository, bookingRepo repository.BookingRepository) *OpenDisputeUseCase {
	return &OpenDisputeUseCase{disputeRepo: disputeRepo, bookingRepo: bookingRepo}
}

// Execute открывает спор по бронированию. Второй открытый спор по тому же бронированию отклоняет БД.
func (uc *OpenDisputeUseCase) Execute(ctx context.Context, actor valueobject.Actor, bookingID uuid.UUID, reason string) (*entity.Dispute, error) {
	booking, err := uc.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	d, err := entity.NewDispute(booking, actor, reason)
	if err != nil {
		return nil, err
	}
	if err := uc.disputeRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

type ListMyDisputesUseCase struct {
	disputeRepo repository.DisputeRepository
}

func NewListMyDisputesUseCase(disputeRepo repository.DisputeRepository) *ListMyDisputesUseCase {
	return &ListMyDisputesUseCase{disputeRepo: disputeRepo}
}

func (uc *ListMyDisputesUseCase) Execute(ctx context.Context, actor valueobject.Actor) ([]*entity.Dispute, error) {
	return uc.disputeRepo.ListByUser(ctx, actor.ID)
}

type ListDisputesUseCase struct {
	disputeRepo repository.DisputeRepository
}

func NewListDisputesUseCase(disputeRepo repository.DisputeRepository) *ListDisputesUseCase {
	return &ListDisputesUseCase{disputeRepo: disputeRepo}
}

func (uc *ListDisputesUseCase) Execute(ctx context.Context, actor valueobject.Actor, status string, limit, offset int) ([]*entity.Dispute, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	var filter *valueobject.DisputeStatus
	if status != "" {
		s, err := valueobject.NewDisputeStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &s
	}
	return uc.disputeRepo.List(ctx, filter, limit, offset)
}

type ResolveDisputeUseCase struct {
	disputeRepo repository.DisputeRepository
}

func NewResolveDisputeUseCase(disputeRepo repository.DisputeRepository) *ResolveDisputeUseCase {
	return &ResolveDisputeUseCase{disputeRepo: disputeRepo}
}

func (uc *ResolveDisputeUseCase) Execute(ctx context.Context, actor valueobject.Actor, disputeID uuid.UUID, resolution string) (*entity.Dispute, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	d, err := uc.disputeRepo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if err := d.Resolve(actor, resolution); err != nil {
		return nil, err
	}
	if err := uc.disputeRepo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
