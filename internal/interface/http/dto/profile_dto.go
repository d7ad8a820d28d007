package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/profile"
)

type UpdateProfileRequest struct {
	DisplayName     *string  `json:"display_name"`
	City            *string  `json:"city"`
	PostalCode      *string  `json:"postal_code"`
	RadiusKm        *int     `json:"radius_km"`
	Phone           *string  `json:"phone"`
	Bio             *string  `json:"bio"`
	Qualifications  []string `json:"qualifications"`
	OffersHomebirth *bool    `json:"offers_homebirth"`
	PriceModel      *string  `json:"price_model"`
}

func (r UpdateProfileRequest) ToUpdate() entity.ProfileUpdate {
	return entity.ProfileUpdate{
		DisplayName:     r.DisplayName,
		City:            r.City,
		PostalCode:      r.PostalCode,
		RadiusKm:        r.RadiusKm,
		Phone:           r.Phone,
		Bio:             r.Bio,
		Qualifications:  r.Qualifications,
		OffersHomebirth: r.OffersHomebirth,
		PriceModel:      r.PriceModel,
	}
}

// ProfileResponse отдаётся только владельцу профиля.
type ProfileResponse struct {
	ID              uuid.UUID `json:"id"`
	Role            string    `json:"role"`
	DisplayName     string    `json:"display_name"`
	City            *string   `json:"city"`
	PostalCode      *string   `json:"postal_code"`
	RadiusKm        int       `json:"radius_km"`
	Phone           *string   `json:"phone"`
	Bio             *string   `json:"bio"`
	Qualifications  []string  `json:"qualifications"`
	OffersHomebirth bool      `json:"offers_homebirth"`
	PriceModel      *string   `json:"price_model"`
	Verification    string    `json:"verification"`
	Plan            string    `json:"plan"`
	CalendarToken   *string   `json:"calendar_token,omitempty"`
	PhotoPath       *string   `json:"photo_path"`
	Completion      int       `json:"completion"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToProfileResponse(p *entity.Profile) ProfileResponse {
	return ProfileResponse{
		ID:              p.ID,
		Role:            string(p.Role),
		DisplayName:     p.DisplayName,
		City:            p.City,
		PostalCode:      p.PostalCode,
		RadiusKm:        p.RadiusKm,
		Phone:           p.Phone,
		Bio:             p.Bio,
		Qualifications:  nonNil(p.Qualifications),
		OffersHomebirth: p.OffersHomebirth,
		PriceModel:      priceModel(p.PriceModel),
		Verification:    string(p.Verification),
		Plan:            string(p.Plan),
		CalendarToken:   p.CalendarToken,
		PhotoPath:       p.PhotoPath,
		Completion:      p.Completion(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// MidwifeResponse описывает публичную карточку акушерки, без телефона.
type MidwifeResponse struct {
	ID              uuid.UUID `json:"id"`
	DisplayName     string    `json:"display_name"`
	City            *string   `json:"city"`
	PostalCode      *string   `json:"postal_code"`
	RadiusKm        int       `json:"radius_km"`
	Bio             *string   `json:"bio"`
	Qualifications  []string  `json:"qualifications"`
	OffersHomebirth bool      `json:"offers_homebirth"`
	PriceModel      *string   `json:"price_model"`
	IsPro           bool      `json:"is_pro"`
	PhotoPath       *string   `json:"photo_path"`
	DistanceKm      *float64  `json:"distance_km,omitempty"`
}

func ToMidwifeResponse(p *entity.Profile) MidwifeResponse {
	return MidwifeResponse{
		ID:              p.ID,
		DisplayName:     p.DisplayName,
		City:            p.City,
		PostalCode:      p.PostalCode,
		RadiusKm:        p.RadiusKm,
		Bio:             p.Bio,
		Qualifications:  nonNil(p.Qualifications),
		OffersHomebirth: p.OffersHomebirth,
		PriceModel:      priceModel(p.PriceModel),
		IsPro:           p.IsPro(),
		PhotoPath:       p.PhotoPath,
	}
}

func ToSearchResponses(results []repository.MidwifeSearchResult) []MidwifeResponse {
	out := make([]MidwifeResponse, 0, len(results))
	for _, r := range results {
		item := ToMidwifeResponse(r.Profile)
		distance := r.DistanceKm
		item.DistanceKm = &distance
		out = append(out, item)
	}
	return out
}

type CompletionResponse struct {
	Percent int      `json:"percent"`
	Missing []string `json:"missing"`
}

func ToCompletionResponse(c *profile.Completion) CompletionResponse {
	return CompletionResponse{Percent: c.Percent, Missing: nonNil(c.Missing)}
}

type SetVerificationRequest struct {
	Status string `json:"status" binding:"required"`
}

type CalendarTokenResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type PhotoResponse struct {
	PhotoPath string `json:"photo_path"`
}

type AvailabilityRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Note      string `json:"note"`
}

type AvailabilityResponse struct {
	ID        uuid.UUID `json:"id"`
	MidwifeID uuid.UUID `json:"midwife_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Note      *string   `json:"note"`
}

const DateLayout = "2006-01-02"

func ToAvailabilityResponses(items []*entity.Availability) []AvailabilityResponse {
	out := make([]AvailabilityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, ToAvailabilityResponse(a))
	}
	return out
}

func ToAvailabilityResponse(a *entity.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		ID:        a.ID,
		MidwifeID: a.MidwifeID,
		StartDate: a.StartDate.Format(DateLayout),
		EndDate:   a.EndDate.Format(DateLayout),
		Note:      a.Note,
	}
}

func priceModel(p *entity.PriceModel) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
