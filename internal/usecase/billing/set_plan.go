package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type SetPlanInput struct {
	UserID     uuid.UUID
	Plan       valueobject.Plan
	CustomerID string
}

// SetPlanUseCase меняет тариф пользователя. Вызывается обработчиком webhook и внутренним API.
type SetPlanUseCase struct {
	profileRepo repository.ProfileRepository
}

func NewSetPlanUseCase(profileRepo repository.ProfileRepository) *SetPlanUseCase {
	return &SetPlanUseCase{profileRepo: profileRepo}
}

func (uc *SetPlanUseCase) Execute(ctx context.Context, input SetPlanInput) error {
	if input.UserID == uuid.Nil {
		return apperror.New(apperror.ErrCodeValidation, "не указан пользователь")
	}
	if _, err := valueobject.NewPlan(string(input.Plan)); err != nil {
		return err
	}

	if err := uc.profileRepo.SetPlan(ctx, input.UserID, input.Plan); err != nil {
		return err
	}
	if input.CustomerID != "" {
		if err := uc.profileRepo.SetStripeCustomer(ctx, input.UserID, input.CustomerID); err != nil {
			return err
		}
	}

	logger.WithFields(logrus.Fields{
		"user_id": input.UserID,
		"plan":    input.Plan,
	}).Info("billing: тариф обновлён")
	return nil
}
