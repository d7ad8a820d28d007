package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const profileColumns = `p.id, p.role, p.display_name, p.city, p.postal_code, p.radius_km, p.phone, p.bio,
	p.qualifications, p.offers_homebirth, p.price_model, p.verification, p.plan, p.calendar_token,
	p.photo_path, p.stripe_customer_id, p.created_at, p.updated_at`

type profileRow struct {
	ID               uuid.UUID      `db:"id"`
	Role             string         `db:"role"`
	DisplayName      string         `db:"display_name"`
	City             *string        `db:"city"`
	PostalCode       *string        `db:"postal_code"`
	RadiusKm         int            `db:"radius_km"`
	Phone            *string        `db:"phone"`
	Bio              *string        `db:"bio"`
	Qualifications   pq.StringArray `db:"qualifications"`
	OffersHomebirth  bool           `db:"offers_homebirth"`
	PriceModel       *string        `db:"price_model"`
	Verification     string         `db:"verification"`
	Plan             string         `db:"plan"`
	CalendarToken    *string        `db:"calendar_token"`
	PhotoPath        *string        `db:"photo_path"`
	StripeCustomerID *string        `db:"stripe_customer_id"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r profileRow) toEntity() *entity.Profile {
	p := &entity.Profile{
		ID:               r.ID,
		Role:             valueobject.Role(r.Role),
		DisplayName:      r.DisplayName,
		City:             r.City,
		PostalCode:       r.PostalCode,
		RadiusKm:         r.RadiusKm,
		Phone:            r.Phone,
		Bio:              r.Bio,
		Qualifications:   []string(r.Qualifications),
		OffersHomebirth:  r.OffersHomebirth,
		Verification:     valueobject.VerificationStatus(r.Verification),
		Plan:             valueobject.Plan(r.Plan),
		CalendarToken:    r.CalendarToken,
		PhotoPath:        r.PhotoPath,
		StripeCustomerID: r.StripeCustomerID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if p.Qualifications == nil {
		p.Qualifications = []string{}
	}
	if r.PriceModel != nil {
		pm := entity.PriceModel(*r.PriceModel)
		p.PriceModel = &pm
	}
	return p
}

type ProfileRepositoryAdapter struct {
	db *sqlx.DB
}

func NewProfileRepositoryAdapter(db *sqlx.DB) *ProfileRepositoryAdapter {
	return &ProfileRepositoryAdapter{db: db}
}

func priceModelArg(p *entity.Profile) *string {
	if p.PriceModel == nil {
		return nil
	}
	v := string(*p.PriceModel)
	return &v
}

func (r *ProfileRepositoryAdapter) Create(ctx context.Context, p *entity.Profile) error {
	query := `
		INSERT INTO profiles (id, role, display_name, city, postal_code, radius_km, phone, bio, qualifications,
		                      offers_homebirth, price_model, verification, plan, calendar_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		p.ID,
		string(p.Role),
		p.DisplayName,
		p.City,
		p.PostalCode,
		p.RadiusKm,
		p.Phone,
		p.Bio,
		pq.Array(p.Qualifications),
		p.OffersHomebirth,
		priceModelArg(p),
		string(p.Verification),
		string(p.Plan),
		p.CalendarToken,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapDBError(err, "не удалось создать профиль")
}

func (r *ProfileRepositoryAdapter) findOne(ctx context.Context, where string, arg interface{}) (*entity.Profile, error) {
	var row profileRow
	query := `SELECT ` + profileColumns + ` FROM profiles p WHERE ` + where
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, arg); err != nil {
		return nil, notFoundOr(err, apperror.ErrProfileNotFound, "не удалось получить профиль")
	}
	return row.toEntity(), nil
}

func (r *ProfileRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	return r.findOne(ctx, "p.id = $1", id)
}

func (r *ProfileRepositoryAdapter) FindByCalendarToken(ctx context.Context, token string) (*entity.Profile, error) {
	return r.findOne(ctx, "p.calendar_token = $1", token)
}

func (r *ProfileRepositoryAdapter) FindByStripeCustomer(ctx context.Context, customerID string) (*entity.Profile, error) {
	return r.findOne(ctx, "p.stripe_customer_id = $1", customerID)
}

// Update сохраняет анкету. Роль, тариф, статус проверки и служебные поля меняются отдельными методами.
func (r *ProfileRepositoryAdapter) Update(ctx context.Context, p *entity.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $2, city = $3, postal_code = $4, radius_km = $5, phone = $6, bio = $7,
		    qualifications = $8, offers_homebirth = $9, price_model = $10, updated_at = $11
		WHERE id = $1
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		p.ID,
		p.DisplayName,
		p.City,
		p.PostalCode,
		p.RadiusKm,
		p.Phone,
		p.Bio,
		pq.Array(p.Qualifications),
		p.OffersHomebirth,
		priceModelArg(p),
		p.UpdatedAt,
	)
	return r.expectOne(result, err, "не удалось обновить профиль")
}

// SubmitForReview переводит анкету из DRAFT в PENDING. Возвращает false, если статус уже другой.
func (r *ProfileRepositoryAdapter) SubmitForReview(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE profiles SET verification = $2, updated_at = NOW() WHERE id = $1 AND verification = $3`,
		id, string(valueobject.VerificationPending), string(valueobject.VerificationDraft),
	)
	if err != nil {
		return false, mapDBError(err, "не удалось отправить анкету на проверку")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	return rows == 1, nil
}

func (r *ProfileRepositoryAdapter) setColumn(ctx context.Context, column string, id uuid.UUID, value interface{}) error {
	query := `UPDATE profiles SET ` + column + ` = $2, updated_at = NOW() WHERE id = $1`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, value)
	return r.expectOne(result, err, "не удалось обновить профиль")
}

func (r *ProfileRepositoryAdapter) expectOne(result interface{ RowsAffected() (int64, error) }, err error, message string) error {
	if err != nil {
		return mapDBError(err, message)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	if rows == 0 {
		return apperror.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepositoryAdapter) SetPlan(ctx context.Context, id uuid.UUID, plan valueobject.Plan) error {
	return r.setColumn(ctx, "plan", id, string(plan))
}

func (r *ProfileRepositoryAdapter) SetVerification(ctx context.Context, id uuid.UUID, status valueobject.VerificationStatus) error {
	return r.setColumn(ctx, "verification", id, string(status))
}

func (r *ProfileRepositoryAdapter) SetCalendarToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.setColumn(ctx, "calendar_token", id, token)
}

func (r *ProfileRepositoryAdapter) SetPhoto(ctx context.Context, id uuid.UUID, path string) error {
	return r.setColumn(ctx, "photo_path", id, path)
}

func (r *ProfileRepositoryAdapter) SetStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error {
	return r.setColumn(ctx, "stripe_customer_id", id, customerID)
}

// SearchMidwives ищет проверенных акушерок, чей радиус выезда покрывает расстояние
// между центрами почтовых индексов. Расстояние считается по формуле гаверсинусов.
func (r *ProfileRepositoryAdapter) SearchMidwives(ctx context.Context, search repository.MidwifeSearch) ([]repository.MidwifeSearchResult, error) {
	query := `
		WITH origin AS (
			SELECT latitude, longitude FROM postal_codes WHERE code = $1
		)
		SELECT ` + profileColumns + `, d.distance_km
		FROM profiles p
		JOIN postal_codes pc ON pc.code = p.postal_code
		CROSS JOIN origin o
		CROSS JOIN LATERAL (
			SELECT 6371 * 2 * ASIN(SQRT(
				POWER(SIN(RADIANS(pc.latitude - o.latitude) / 2), 2) +
				COS(RADIANS(o.latitude)) * COS(RADIANS(pc.latitude)) *
				POWER(SIN(RADIANS(pc.longitude - o.longitude) / 2), 2)
			)) AS distance_km
		) d
		WHERE p.role = 'MIDWIFE'
		  AND p.verification = 'VERIFIED'
		  AND d.distance_km <= p.radius_km
		  AND d.distance_km <= $2
		ORDER BY (p.plan = 'PRO') DESC, d.distance_km ASC, p.display_name ASC
		LIMIT $3 OFFSET $4
	`

	var rows []struct {
		profileRow
		DistanceKm float64 `db:"distance_km"`
	}
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, search.PostalCode, search.RadiusKm, search.Limit, search.Offset); err != nil {
		return nil, mapDBError(err, "не удалось выполнить поиск акушерок")
	}

	results := make([]repository.MidwifeSearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, repository.MidwifeSearchResult{
			Profile:    row.profileRow.toEntity(),
			DistanceKm: row.DistanceKm,
		})
	}
	return results, nil
}
