package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
)

type BookingFilter struct {
	ClientID  *uuid.UUID
	MidwifeID *uuid.UUID
	Statuses  []valueobject.BookingStatus
	Limit     int
	Offset    int
}

// StatusChange описывает условную запись статуса (compare-and-swap).
type StatusChange struct {
	BookingID uuid.UUID
	From      valueobject.BookingStatus
	To        valueobject.BookingStatus
	Note      *string
	PaidAt    *time.Time
	At        time.Time
}

type BookingRepository interface {
	// Create вставляет заявку; уникальность активной пары и 24-часовой лимит проверяет БД.
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByCheckoutSession(ctx context.Context, sessionID string) (*entity.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*entity.Booking, int, error)
	// CompareAndSetStatus обновляет статус, только если текущий равен change.From.
	// Возвращает false, если строка не была изменена.
	CompareAndSetStatus(ctx context.Context, change StatusChange) (bool, error)
	SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID, checkoutURL string) error
	CountByStatus(ctx context.Context, filter BookingFilter) (map[valueobject.BookingStatus]int, error)
	ListCalendarBookings(ctx context.Context, midwifeID uuid.UUID) ([]*entity.Booking, error)
	// BoostStale помечает заявки старше olderThan у PRO-акушерок и возвращает их количество.
	BoostStale(ctx context.Context, olderThan time.Time) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.Booking, error)
}
