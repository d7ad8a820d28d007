package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type availabilityRow struct {
	ID        uuid.UUID `db:"id"`
	MidwifeID uuid.UUID `db:"midwife_id"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	Note      *string   `db:"note"`
	CreatedAt time.Time `db:"created_at"`
}

type AvailabilityRepositoryAdapter struct {
	db *sqlx.DB
}

func NewAvailabilityRepositoryAdapter(db *sqlx.DB) *AvailabilityRepositoryAdapter {
	return &AvailabilityRepositoryAdapter{db: db}
}

func (r *AvailabilityRepositoryAdapter) Create(ctx context.Context, a *entity.Availability) error {
	query := `
		INSERT INTO availability (id, midwife_id, start_date, end_date, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, a.ID, a.MidwifeID, a.StartDate, a.EndDate, a.Note, a.CreatedAt)
	return mapDBError(err, "не удалось сохранить период доступности")
}

func (r *AvailabilityRepositoryAdapter) ListByMidwife(ctx context.Context, midwifeID uuid.UUID) ([]*entity.Availability, error) {
	query := `
		SELECT id, midwife_id, start_date, end_date, note, created_at
		FROM availability
		WHERE midwife_id = $1
		ORDER BY start_date ASC
	`
	var rows []availabilityRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, midwifeID); err != nil {
		return nil, mapDBError(err, "не удалось получить периоды доступности")
	}

	result := make([]*entity.Availability, 0, len(rows))
	for _, row := range rows {
		result = append(result, &entity.Availability{
			ID:        row.ID,
			MidwifeID: row.MidwifeID,
			StartDate: row.StartDate,
			EndDate:   row.EndDate,
			Note:      row.Note,
			CreatedAt: row.CreatedAt,
		})
	}
	return result, nil
}

// Delete удаляет только собственный период акушерки; чужой выглядит как отсутствующий.
func (r *AvailabilityRepositoryAdapter) Delete(ctx context.Context, id, midwifeID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM availability WHERE id = $1 AND midwife_id = $2`, id, midwifeID)
	if err != nil {
		return mapDBError(err, "не удалось удалить период доступности")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат удаления")
	}
	if rows == 0 {
		return apperror.ErrAvailabilityNotFound
	}
	return nil
}
