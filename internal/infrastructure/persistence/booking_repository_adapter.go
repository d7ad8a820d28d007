package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const bookingColumns = `id, client_id, midwife_id, status, note, is_boosted, checkout_session_id, checkout_url,
	amount_cents, currency, created_at, updated_at, paid_at`

type bookingRow struct {
	ID                uuid.UUID  `db:"id"`
	ClientID          uuid.UUID  `db:"client_id"`
	MidwifeID         uuid.UUID  `db:"midwife_id"`
	Status            string     `db:"status"`
	Note              *string    `db:"note"`
	IsBoosted         bool       `db:"is_boosted"`
	CheckoutSessionID *string    `db:"checkout_session_id"`
	CheckoutURL       *string    `db:"checkout_url"`
	AmountCents       int64      `db:"amount_cents"`
	Currency          string     `db:"currency"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
	PaidAt            *time.Time `db:"paid_at"`
}

func (r bookingRow) toEntity() *entity.Booking {
	return &entity.Booking{
		ID:                r.ID,
		ClientID:          r.ClientID,
		MidwifeID:         r.MidwifeID,
		Status:            valueobject.BookingStatus(r.Status),
		Note:              r.Note,
		IsBoosted:         r.IsBoosted,
		CheckoutSessionID: r.CheckoutSessionID,
		CheckoutURL:       r.CheckoutURL,
		Fee:               valueobject.MoneyFromCents(r.AmountCents, r.Currency),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		PaidAt:            r.PaidAt,
	}
}

func toBookings(rows []bookingRow) []*entity.Booking {
	result := make([]*entity.Booking, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toEntity())
	}
	return result
}

type BookingRepositoryAdapter struct {
	db *sqlx.DB
}

func NewBookingRepositoryAdapter(db *sqlx.DB) *BookingRepositoryAdapter {
	return &BookingRepositoryAdapter{db: db}
}

func (r *BookingRepositoryAdapter) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, client_id, midwife_id, status, note, is_boosted, amount_cents, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	return withSavepoint(ctx, r.db, "booking_create", func() error {
		_, err := conn(ctx, r.db).ExecContext(ctx, query,
			booking.ID,
			booking.ClientID,
			booking.MidwifeID,
			string(booking.Status),
			booking.Note,
			booking.IsBoosted,
			booking.Fee.Cents(),
			booking.Fee.Currency,
			booking.CreatedAt,
			booking.UpdatedAt,
		)
		return mapDBError(err, "не удалось создать бронирование")
	})
}

func (r *BookingRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, notFoundOr(err, apperror.ErrBookingNotFound, "не удалось получить бронирование")
	}
	return row.toEntity(), nil
}

func (r *BookingRepositoryAdapter) FindByCheckoutSession(ctx context.Context, sessionID string) (*entity.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE checkout_session_id = $1`
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, sessionID); err != nil {
		return nil, notFoundOr(err, apperror.ErrBookingNotFound, "не удалось получить бронирование")
	}
	return row.toEntity(), nil
}

// bookingWhere собирает условия фильтра; плейсхолдеры нумеруются с 1.
func bookingWhere(filter repository.BookingFilter) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.MidwifeID != nil {
		args = append(args, *filter.MidwifeID)
		conditions = append(conditions, fmt.Sprintf("midwife_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func (r *BookingRepositoryAdapter) List(ctx context.Context, filter repository.BookingFilter) ([]*entity.Booking, int, error) {
	where, args := bookingWhere(filter)
	q := conn(ctx, r.db)

	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookings WHERE `+where, args...); err != nil {
		return nil, 0, mapDBError(err, "не удалось подсчитать бронирования")
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var rows []bookingRow
	if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, mapDBError(err, "не удалось получить список бронирований")
	}
	return toBookings(rows), total, nil
}

func (r *BookingRepositoryAdapter) CompareAndSetStatus(ctx context.Context, change repository.StatusChange) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $3,
		    note = COALESCE($4, note),
		    paid_at = $5,
		    updated_at = $6
		WHERE id = $1 AND status = $2
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		change.BookingID,
		string(change.From),
		string(change.To),
		change.Note,
		change.PaidAt,
		change.At,
	)
	if err != nil {
		return false, mapDBError(err, "не удалось обновить статус бронирования")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	return rows == 1, nil
}

func (r *BookingRepositoryAdapter) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID, checkoutURL string) error {
	query := `UPDATE bookings SET checkout_session_id = $2, checkout_url = $3, updated_at = NOW() WHERE id = $1`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, sessionID, checkoutURL)
	if err != nil {
		return mapDBError(err, "не удалось сохранить checkout-сессию")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperror.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepositoryAdapter) CountByStatus(ctx context.Context, filter repository.BookingFilter) (map[valueobject.BookingStatus]int, error) {
	where, args := bookingWhere(filter)

	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	query := `SELECT status, COUNT(*) AS count FROM bookings WHERE ` + where + ` GROUP BY status`
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapDBError(err, "не удалось получить статистику бронирований")
	}

	counts := make(map[valueobject.BookingStatus]int, len(rows))
	for _, row := range rows {
		counts[valueobject.BookingStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *BookingRepositoryAdapter) ListCalendarBookings(ctx context.Context, midwifeID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE midwife_id = $1 AND status IN ('CONFIRMED', 'PAID')
		ORDER BY created_at ASC
	`
	var rows []bookingRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, midwifeID); err != nil {
		return nil, mapDBError(err, "не удалось получить бронирования для календаря")
	}
	return toBookings(rows), nil
}

func (r *BookingRepositoryAdapter) BoostStale(ctx context.Context, olderThan time.Time) (int, error) {
	query := `
		UPDATE bookings b
		SET is_boosted = TRUE, updated_at = NOW()
		FROM profiles p
		WHERE p.id = b.midwife_id
		  AND p.plan = 'PRO'
		  AND b.status = 'REQUESTED'
		  AND NOT b.is_boosted
		  AND b.created_at <= $1
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, mapDBError(err, "не удалось поднять заявки")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	return int(rows), nil
}

func (r *BookingRepositoryAdapter) ListRecent(ctx context.Context, limit int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC LIMIT $1`
	var rows []bookingRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, mapDBError(err, "не удалось получить последние бронирования")
	}
	return toBookings(rows), nil
}
