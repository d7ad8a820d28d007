package profile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type AvailabilityInput struct {
	StartDate time.Time
	EndDate   time.Time
	Note      string
}

type AddAvailabilityUseCase struct {
	availabilityRepo repository.AvailabilityRepository
}

func NewAddAvailabilityUseCase(availabilityRepo repository.AvailabilityRepository) *AddAvailabilityUseCase {
	return &AddAvailabilityUseCase{availabilityRepo: availabilityRepo}
}

func (uc *AddAvailabilityUseCase) Execute(ctx context.Context, actor valueobject.Actor, input AvailabilityInput) (*entity.Availability, error) {
	if actor.Role != valueobject.RoleMidwife {
		return nil, apperror.New(apperror.ErrCodeForbidden, "периоды доступности ведут только акушерки")
	}
	a, err := entity.NewAvailability(actor.ID, input.StartDate, input.EndDate, input.Note)
	if err != nil {
		return nil, err
	}
	if err := uc.availabilityRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

type ListAvailabilityUseCase struct {
	availabilityRepo repository.AvailabilityRepository
}

func NewListAvailabilityUseCase(availabilityRepo repository.AvailabilityRepository) *ListAvailabilityUseCase {
	return &ListAvailabilityUseCase{availabilityRepo: availabilityRepo}
}

func (uc *ListAvailabilityUseCase) Execute(ctx context.Context, midwifeID uuid.UUID) ([]*entity.Availability, error) {
	return uc.availabilityRepo.ListByMidwife(ctx, midwifeID)
}

type DeleteAvailabilityUseCase struct {
	availabilityRepo repository.AvailabilityRepository
}

func NewDeleteAvailabilityUseCase(availabilityRepo repository.AvailabilityRepository) *DeleteAvailabilityUseCase {
	return &DeleteAvailabilityUseCase{availabilityRepo: availabilityRepo}
}

func (uc *DeleteAvailabilityUseCase) Execute(ctx context.Context, actor valueobject.Actor, id uuid.UUID) error {
	if actor.Role != valueobject.RoleMidwife {
		return apperror.ErrForbidden
	}
	return uc.availabilityRepo.Delete(ctx, id, actor.ID)
}
