package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
)

type MidwifeSearch struct {
	PostalCode string
	RadiusKm   int
	Limit      int
	Offset     int
}

type MidwifeSearchResult struct {
	Profile    *entity.Profile
	DistanceKm float64
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	FindByCalendarToken(ctx context.Context, token string) (*entity.Profile, error)
	FindByStripeCustomer(ctx context.Context, customerID string) (*entity.Profile, error)
	Update(ctx context.Context, profile *entity.Profile) error
	SetPlan(ctx context.Context, id uuid.UUID, plan valueobject.Plan) error
	SetVerification(ctx context.Context, id uuid.UUID, status valueobject.VerificationStatus) error
	// SubmitForReview выполняет условный переход DRAFT -> PENDING.
	SubmitForReview(ctx context.Context, id uuid.UUID) (bool, error)
	SetCalendarToken(ctx context.Context, id uuid.UUID, token string) error
	SetPhoto(ctx context.Context, id uuid.UUID, path string) error
	SetStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error
	SearchMidwives(ctx context.Context, search MidwifeSearch) ([]MidwifeSearchResult, error)
}

type AvailabilityRepository interface {
	Create(ctx context.Context, a *entity.Availability) error
	ListByMidwife(ctx context.Context, midwifeID uuid.UUID) ([]*entity.Availability, error)
	Delete(ctx context.Context, id, midwifeID uuid.UUID) error
}
