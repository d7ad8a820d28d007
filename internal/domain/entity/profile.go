package entity

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const (
	maxDisplayNameLength = 100
	maxBioLength         = 2000
	maxCityLength        = 100
	maxRadiusKm          = 200
)

var postalCodeRe = regexp.MustCompile(`^[0-9]{5}$`)

type PriceModel string

const (
	PriceModelFix       PriceModel = "FIX"
	PriceModelPerVisit  PriceModel = "PER_VISIT"
	PriceModelInsurance PriceModel = "INSURANCE"
)

type Profile struct {
	ID               uuid.UUID
	Role             valueobject.Role
	DisplayName      string
	City             *string
	PostalCode       *string
	RadiusKm         int
	Phone            *string
	Bio              *string
	Qualifications   []string
	OffersHomebirth  bool
	PriceModel       *PriceModel
	Verification     valueobject.VerificationStatus
	Plan             valueobject.Plan
	CalendarToken    *string
	PhotoPath        *string
	StripeCustomerID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewProfile создаёт профиль сразу после регистрации.
func NewProfile(userID uuid.UUID, role valueobject.Role, displayName string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		ID:             userID,
		Role:           role,
		DisplayName:    strings.TrimSpace(displayName),
		Qualifications: []string{},
		Verification:   valueobject.VerificationDraft,
		Plan:           valueobject.PlanFree,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (p *Profile) IsMidwife() bool {
	return p.Role == valueobject.RoleMidwife
}

func (p *Profile) IsPro() bool {
	return p.Plan == valueobject.PlanPro
}

// ProfileUpdate содержит данные онбординга, nil означает "не менять".
type ProfileUpdate struct {
	DisplayName     *string
	City            *string
	PostalCode      *string
	RadiusKm        *int
	Phone           *string
	Bio             *string
	Qualifications  []string
	OffersHomebirth *bool
	PriceModel      *string
}

func (p *Profile) Apply(u ProfileUpdate) error {
	if u.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*u.DisplayName)
	}
	if u.City != nil {
		p.City = trimmedOrNil(*u.City)
	}
	if u.PostalCode != nil {
		p.PostalCode = trimmedOrNil(*u.PostalCode)
	}
	if u.RadiusKm != nil {
		p.RadiusKm = *u.RadiusKm
	}
	if u.Phone != nil {
		p.Phone = trimmedOrNil(*u.Phone)
	}
	if u.Bio != nil {
		p.Bio = trimmedOrNil(*u.Bio)
	}
	if u.Qualifications != nil {
		p.Qualifications = cleanList(u.Qualifications)
	}
	if u.OffersHomebirth != nil {
		p.OffersHomebirth = *u.OffersHomebirth
	}
	if u.PriceModel != nil {
		pm := PriceModel(strings.ToUpper(strings.TrimSpace(*u.PriceModel)))
		switch pm {
		case "":
			p.PriceModel = nil
		case PriceModelFix, PriceModelPerVisit, PriceModelInsurance:
			p.PriceModel = &pm
		default:
			return apperror.New(apperror.ErrCodeValidation, "некорректная модель цены")
		}
	}
	p.UpdatedAt = time.Now().UTC()
	return p.ValidateOnboarding()
}

// ValidateOnboarding проверяет обязательные поля анкеты.
func (p *Profile) ValidateOnboarding() error {
	if p.DisplayName == "" {
		return apperror.New(apperror.ErrCodeValidation, "имя обязательно")
	}
	if utf8.RuneCountInString(p.DisplayName) > maxDisplayNameLength {
		return apperror.New(apperror.ErrCodeValidation, "имя слишком длинное")
	}
	if p.PostalCode == nil || !postalCodeRe.MatchString(*p.PostalCode) {
		return apperror.New(apperror.ErrCodeValidation, "почтовый индекс должен состоять из 5 цифр")
	}
	if p.City == nil || utf8.RuneCountInString(*p.City) > maxCityLength {
		return apperror.New(apperror.ErrCodeValidation, "город обязателен")
	}
	if p.Bio != nil && utf8.RuneCountInString(*p.Bio) > maxBioLength {
		return apperror.New(apperror.ErrCodeValidation, "описание слишком длинное")
	}
	if p.IsMidwife() && (p.RadiusKm <= 0 || p.RadiusKm > maxRadiusKm) {
		return apperror.New(apperror.ErrCodeValidation, "радиус выезда должен быть от 1 до 200 км")
	}
	return nil
}

// Completion возвращает процент заполненности анкеты.
func (p *Profile) Completion() int {
	missing := len(p.MissingFields())
	total := len(completionFields)
	return int(math.Round(float64(total-missing) / float64(total) * 100))
}

var completionFields = []string{"city", "postal_code", "bio", "qualifications", "phone", "price_model"}

// MissingFields перечисляет незаполненные поля анкеты в порядке completionFields.
func (p *Profile) MissingFields() []string {
	filled := map[string]bool{
		"city":           p.City != nil,
		"postal_code":    p.PostalCode != nil,
		"bio":            p.Bio != nil,
		"qualifications": len(p.Qualifications) > 0,
		"phone":          p.Phone != nil,
		"price_model":    p.PriceModel != nil,
	}
	missing := make([]string, 0, len(completionFields))
	for _, field := range completionFields {
		if !filled[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

// SubmitForReview переводит полностью заполненный профиль акушерки из DRAFT в PENDING.
func (p *Profile) SubmitForReview() bool {
	if !p.IsMidwife() || p.Verification != valueobject.VerificationDraft {
		return false
	}
	if p.Completion() < 100 {
		return false
	}
	p.Verification = valueobject.VerificationPending
	return true
}

func trimmedOrNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func cleanList(items []string) []string {
	result := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}
