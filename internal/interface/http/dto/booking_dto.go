package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/booking"
)

type CreateBookingRequest struct {
	MidwifeID string `json:"midwife_id" binding:"required"`
}

type CreateBookingResponse struct {
	ID uuid.UUID `json:"id"`
}

type UpdateBookingStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Note   *string `json:"note"`
}

type BookingResponse struct {
	ID          uuid.UUID  `json:"id"`
	ClientID    uuid.UUID  `json:"client_id"`
	MidwifeID   uuid.UUID  `json:"midwife_id"`
	Status      string     `json:"status"`
	Note        *string    `json:"note"`
	IsBoosted   bool       `json:"is_boosted"`
	CheckoutURL *string    `json:"checkout_url,omitempty"`
	Fee         string     `json:"fee"`
	FeeCents    int64      `json:"fee_cents"`
	Currency    string     `json:"currency"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PaidAt      *time.Time `json:"paid_at"`
}

func ToBookingResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		ClientID:    b.ClientID,
		MidwifeID:   b.MidwifeID,
		Status:      string(b.Status),
		Note:        b.Note,
		IsBoosted:   b.IsBoosted,
		CheckoutURL: b.CheckoutURL,
		Fee:         b.Fee.Amount.StringFixed(2),
		FeeCents:    b.Fee.Cents(),
		Currency:    b.Fee.Currency,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		PaidAt:      b.PaidAt,
	}
}

func ToBookingResponses(items []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(items))
	for _, b := range items {
		out = append(out, ToBookingResponse(b))
	}
	return out
}

type ContactResponse struct {
	BookingID     uuid.UUID `json:"booking_id"`
	CounterpartID uuid.UUID `json:"counterpart_id"`
	DisplayName   string    `json:"display_name"`
	Status        string    `json:"status"`
	Phone         string    `json:"phone"`
	Masked        bool      `json:"masked"`
}

func ToContactResponse(c *booking.Contact) ContactResponse {
	return ContactResponse{
		BookingID:     c.BookingID,
		CounterpartID: c.CounterpartID,
		DisplayName:   c.DisplayName,
		Status:        string(c.Status),
		Phone:         c.Phone,
		Masked:        c.Masked,
	}
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type StatsResponse struct {
	ByStatus map[string]int `json:"by_status"`
	Open     int            `json:"open"`
	Payable  int            `json:"payable"`
	Total    int            `json:"total"`
}

func ToStatsResponse(s *booking.Stats) StatsResponse {
	byStatus := make(map[string]int, len(s.ByStatus))
	for status, n := range s.ByStatus {
		byStatus[string(status)] = n
	}
	return StatsResponse{ByStatus: byStatus, Open: s.Open, Payable: s.Payable, Total: s.Total}
}
