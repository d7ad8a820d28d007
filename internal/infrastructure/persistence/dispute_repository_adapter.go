package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const disputeColumns = `d.id, d.booking_id, d.opened_by, d.reason, d.status, d.resolution, d.resolved_by, d.resolved_at, d.created_at, d.updated_at`

type disputeRow struct {
	ID         uuid.UUID  `db:"id"`
	BookingID  uuid.UUID  `db:"booking_id"`
	OpenedBy   uuid.UUID  `db:"opened_by"`
	Reason     string     `db:"reason"`
	Status     string     `db:"status"`
	Resolution *string    `db:"resolution"`
	ResolvedBy *uuid.UUID `db:"resolved_by"`
	ResolvedAt *time.Time `db:"resolved_at"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (r disputeRow) toEntity() *entity.Dispute {
	return &entity.Dispute{
		ID:         r.ID,
		BookingID:  r.BookingID,
		OpenedBy:   r.OpenedBy,
		Reason:     r.Reason,
		Status:     valueobject.DisputeStatus(r.Status),
		Resolution: r.Resolution,
		ResolvedBy: r.ResolvedBy,
		ResolvedAt: r.ResolvedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toDisputes(rows []disputeRow) []*entity.Dispute {
	result := make([]*entity.Dispute, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toEntity())
	}
	return result
}

type DisputeRepositoryAdapter struct {
	db *sqlx.DB
}

func NewDisputeRepositoryAdapter(db *sqlx.DB) *DisputeRepositoryAdapter {
	return &DisputeRepositoryAdapter{db: db}
}

func (r *DisputeRepositoryAdapter) Create(ctx context.Context, d *entity.Dispute) error {
	query := `
		INSERT INTO disputes (id, booking_id, opened_by, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, d.ID, d.BookingID, d.OpenedBy, d.Reason, string(d.Status), d.CreatedAt, d.UpdatedAt)
	return mapDBError(err, "не удалось открыть спор")
}

func (r *DisputeRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Dispute, error) {
	var row disputeRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, `SELECT `+disputeColumns+` FROM disputes d WHERE d.id = $1`, id); err != nil {
		return nil, notFoundOr(err, apperror.ErrDisputeNotFound, "не удалось получить спор")
	}
	return row.toEntity(), nil
}

// ListByUser возвращает споры по бронированиям, где пользователь является стороной.
func (r *DisputeRepositoryAdapter) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Dispute, error) {
	query := `
		SELECT ` + disputeColumns + `
		FROM disputes d
		JOIN bookings b ON b.id = d.booking_id
		WHERE b.client_id = $1 OR b.midwife_id = $1
		ORDER BY d.created_at DESC
	`
	var rows []disputeRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, mapDBError(err, "не удалось получить споры")
	}
	return toDisputes(rows), nil
}

func (r *DisputeRepositoryAdapter) List(ctx context.Context, status *valueobject.DisputeStatus, limit, offset int) ([]*entity.Dispute, error) {
	query := `
		SELECT ` + disputeColumns + `
		FROM disputes d
		WHERE ($1::text IS NULL OR d.status = $1)
		ORDER BY d.created_at DESC
		LIMIT $2 OFFSET $3
	`
	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	var rows []disputeRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, statusArg, limit, offset); err != nil {
		return nil, mapDBError(err, "не удалось получить споры")
	}
	return toDisputes(rows), nil
}

func (r *DisputeRepositoryAdapter) Update(ctx context.Context, d *entity.Dispute) error {
	query := `
		UPDATE disputes
		SET status = $2, resolution = $3, resolved_by = $4, resolved_at = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, d.ID, string(d.Status), d.Resolution, d.ResolvedBy, d.ResolvedAt, d.UpdatedAt)
	if err != nil {
		return mapDBError(err, "не удалось обновить спор")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperror.ErrDisputeNotFound
	}
	return nil
}
