package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
)

type DisputeRepository interface {
	Create(ctx context.Context, dispute *entity.Dispute) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Dispute, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Dispute, error)
	List(ctx context.Context, status *valueobject.DisputeStatus, limit, offset int) ([]*entity.Dispute, error)
	Update(ctx context.Context, dispute *entity.Dispute) error
}
