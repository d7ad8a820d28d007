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

type subscriptionRow struct {
	UserID               uuid.UUID  `db:"user_id"`
	StripeSubscriptionID string     `db:"stripe_subscription_id"`
	StripeCustomerID     string     `db:"stripe_customer_id"`
	Status               string     `db:"status"`
	PriceID              *string    `db:"price_id"`
	CurrentPeriodEnd     *time.Time `db:"current_period_end"`
	CancelAtPeriodEnd    bool       `db:"cancel_at_period_end"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

func (r subscriptionRow) toEntity() *entity.Subscription {
	return &entity.Subscription{
		UserID:               r.UserID,
		StripeSubscriptionID: r.StripeSubscriptionID,
		StripeCustomerID:     r.StripeCustomerID,
		Status:               r.Status,
		PriceID:              r.PriceID,
		CurrentPeriodEnd:     r.CurrentPeriodEnd,
		CancelAtPeriodEnd:    r.CancelAtPeriodEnd,
		UpdatedAt:            r.UpdatedAt,
	}
}

const subscriptionColumns = `user_id, stripe_subscription_id, stripe_customer_id, status, price_id,
	current_period_end, cancel_at_period_end, updated_at`

type SubscriptionRepositoryAdapter struct {
	db *sqlx.DB
}

func NewSubscriptionRepositoryAdapter(db *sqlx.DB) *SubscriptionRepositoryAdapter {
	return &SubscriptionRepositoryAdapter{db: db}
}

// Upsert хранит одну подписку на пользователя; повторная доставка события перезаписывает те же значения.
func (r *SubscriptionRepositoryAdapter) Upsert(ctx context.Context, s *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, stripe_subscription_id, stripe_customer_id, status, price_id,
		                           current_period_end, cancel_at_period_end, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE
		SET stripe_subscription_id = EXCLUDED.stripe_subscription_id,
		    stripe_customer_id = EXCLUDED.stripe_customer_id,
		    status = EXCLUDED.status,
		    price_id = EXCLUDED.price_id,
		    current_period_end = EXCLUDED.current_period_end,
		    cancel_at_period_end = EXCLUDED.cancel_at_period_end,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		s.UserID,
		s.StripeSubscriptionID,
		s.StripeCustomerID,
		s.Status,
		s.PriceID,
		s.CurrentPeriodEnd,
		s.CancelAtPeriodEnd,
		s.UpdatedAt,
	)
	return mapDBError(err, "не удалось сохранить подписку")
}

func (r *SubscriptionRepositoryAdapter) FindByCustomer(ctx context.Context, customerID string) (*entity.Subscription, error) {
	var row subscriptionRow
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE stripe_customer_id = $1 ORDER BY updated_at DESC LIMIT 1`
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, customerID); err != nil {
		return nil, notFoundOr(err, apperror.New(apperror.ErrCodeNotFound, "подписка не найдена"), "не удалось получить подписку")
	}
	return row.toEntity(), nil
}

func (r *SubscriptionRepositoryAdapter) FindByUser(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error) {
	var row subscriptionRow
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1`
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, userID); err != nil {
		return nil, notFoundOr(err, apperror.New(apperror.ErrCodeNotFound, "подписка не найдена"), "не удалось получить подписку")
	}
	return row.toEntity(), nil
}

type InvoiceRepositoryAdapter struct {
	db *sqlx.DB
}

func NewInvoiceRepositoryAdapter(db *sqlx.DB) *InvoiceRepositoryAdapter {
	return &InvoiceRepositoryAdapter{db: db}
}

func (r *InvoiceRepositoryAdapter) Upsert(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (stripe_invoice_id, user_id, amount_cents, currency, hosted_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (stripe_invoice_id) DO UPDATE
		SET amount_cents = EXCLUDED.amount_cents,
		    currency = EXCLUDED.currency,
		    hosted_url = EXCLUDED.hosted_url,
		    status = EXCLUDED.status
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		inv.StripeInvoiceID,
		inv.UserID,
		inv.Amount.Cents(),
		inv.Amount.Currency,
		inv.HostedURL,
		inv.Status,
		inv.CreatedAt,
	)
	return mapDBError(err, "не удалось сохранить счёт")
}

type paymentRow struct {
	ID          uuid.UUID `db:"id"`
	BookingID   uuid.UUID `db:"booking_id"`
	SessionID   string    `db:"session_id"`
	AmountCents int64     `db:"amount_cents"`
	Currency    string    `db:"currency"`
	PaidAt      time.Time `db:"paid_at"`
	CreatedAt   time.Time `db:"created_at"`
}

type PaymentRepositoryAdapter struct {
	db *sqlx.DB
}

func NewPaymentRepositoryAdapter(db *sqlx.DB) *PaymentRepositoryAdapter {
	return &PaymentRepositoryAdapter{db: db}
}

func (r *PaymentRepositoryAdapter) Record(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, session_id, amount_cents, currency, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO NOTHING
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		p.ID,
		p.BookingID,
		p.SessionID,
		p.Amount.Cents(),
		p.Amount.Currency,
		p.PaidAt,
		p.CreatedAt,
	)
	return mapDBError(err, "не удалось сохранить платёж")
}

func (r *PaymentRepositoryAdapter) ListRecent(ctx context.Context, limit int) ([]*entity.Payment, error) {
	query := `
		SELECT id, booking_id, session_id, amount_cents, currency, paid_at, created_at
		FROM payments
		ORDER BY paid_at DESC
		LIMIT $1
	`
	var rows []paymentRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, mapDBError(err, "не удалось получить платежи")
	}

	result := make([]*entity.Payment, 0, len(rows))
	for _, row := range rows {
		result = append(result, &entity.Payment{
			ID:        row.ID,
			BookingID: row.BookingID,
			SessionID: row.SessionID,
			Amount:    valueobject.MoneyFromCents(row.AmountCents, row.Currency),
			PaidAt:    row.PaidAt,
			CreatedAt: row.CreatedAt,
		})
	}
	return result, nil
}

// WebhookEventRepositoryAdapter обеспечивает идемпотентность обработки платёжных событий.
type WebhookEventRepositoryAdapter struct {
	db *sqlx.DB
}

func NewWebhookEventRepositoryAdapter(db *sqlx.DB) *WebhookEventRepositoryAdapter {
	return &WebhookEventRepositoryAdapter{db: db}
}

func (r *WebhookEventRepositoryAdapter) Begin(ctx context.Context, eventID, eventType string, fn func(ctx context.Context) error) (bool, error) {
	processed := false
	err := WithTx(ctx, r.db, func(txCtx context.Context) error {
		result, err := conn(txCtx, r.db).ExecContext(txCtx,
			`INSERT INTO webhook_events (id, type, received_at) VALUES ($1, $2, NOW()) ON CONFLICT (id) DO NOTHING`,
			eventID, eventType,
		)
		if err != nil {
			return mapDBError(err, "не удалось зарегистрировать событие")
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат вставки")
		}
		if rows == 0 {
			return nil
		}

		if err := fn(txCtx); err != nil {
			return err
		}
		processed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return processed, nil
}
