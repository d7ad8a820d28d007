package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type GetProfileUseCase struct {
	profileRepo repository.ProfileRepository
}

func NewGetProfileUseCase(profileRepo repository.ProfileRepository) *GetProfileUseCase {
	return &GetProfileUseCase{profileRepo: profileRepo}
}

func (uc *GetProfileUseCase) Execute(ctx context.Context, actor valueobject.Actor) (*entity.Profile, error) {
	return uc.profileRepo.FindByID(ctx, actor.ID)
}

// GetMidwifeUseCase отдаёт публичную анкету акушерки. Телефон в ответ не попадает.
type GetMidwifeUseCase struct {
	profileRepo repository.ProfileRepository
}

func NewGetMidwifeUseCase(profileRepo repository.ProfileRepository) *GetMidwifeUseCase {
	return &GetMidwifeUseCase{profileRepo: profileRepo}
}

func (uc *GetMidwifeUseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	p, err := uc.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsMidwife() {
		return nil, apperror.New(apperror.ErrCodeNotFound, "акушерка не найдена")
	}
	public := *p
	public.Phone = nil
	public.CalendarToken = nil
	public.StripeCustomerID = nil
	return &public, nil
}

type UpdateProfileUseCase struct {
	profileRepo repository.ProfileRepository
	cache       Cache
}

func NewUpdateProfileUseCase(profileRepo repository.ProfileRepository, cache Cache) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{profileRepo: profileRepo, cache: cache}
}

// Execute применяет изменения анкеты; заполненная анкета акушерки уходит на проверку.
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, actor valueobject.Actor, update entity.ProfileUpdate) (*entity.Profile, error) {
	p, err := uc.profileRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if err := p.Apply(update); err != nil {
		return nil, err
	}

	// Статус проверки не входит в общее обновление: его меняет администратор.
	if err := uc.profileRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	if p.SubmitForReview() {
		if _, err := uc.profileRepo.SubmitForReview(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	if uc.cache != nil && p.IsMidwife() {
		uc.cache.InvalidateByPrefix(searchCachePrefix)
	}
	return uc.profileRepo.FindByID(ctx, p.ID)
}

type Completion struct {
	Percent int
	Missing []string
}

type GetCompletionUseCase struct {
	profileRepo repository.ProfileRepository
}

func NewGetCompletionUseCase(profileRepo repository.ProfileRepository) *GetCompletionUseCase {
	return &GetCompletionUseCase{profileRepo: profileRepo}
}

func (uc *GetCompletionUseCase) Execute(ctx context.Context, actor valueobject.Actor) (*Completion, error) {
	p, err := uc.profileRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &Completion{Percent: p.Completion(), Missing: p.MissingFields()}, nil
}

// SetVerificationUseCase меняет статус проверки анкеты акушерки.
type SetVerificationUseCase struct {
	profileRepo repository.ProfileRepository
	cache       Cache
}

func NewSetVerificationUseCase(profileRepo repository.ProfileRepository, cache Cache) *SetVerificationUseCase {
	return &SetVerificationUseCase{profileRepo: profileRepo, cache: cache}
}

func (uc *SetVerificationUseCase) Execute(ctx context.Context, actor valueobject.Actor, profileID uuid.UUID, status string) (*entity.Profile, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	verification, err := valueobject.NewVerificationStatus(status)
	if err != nil {
		return nil, err
	}

	p, err := uc.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !p.IsMidwife() {
		return nil, apperror.New(apperror.ErrCodeValidation, "верификация доступна только для акушерок")
	}

	if err := uc.profileRepo.SetVerification(ctx, profileID, verification); err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.InvalidateByPrefix(searchCachePrefix)
	}
	p.Verification = verification
	return p, nil
}
