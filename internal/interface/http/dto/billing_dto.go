package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/admin"
)

type SubscribeRequest struct {
	Interval string `json:"interval"`
}

type PortalResponse struct {
	URL string `json:"url"`
}

type UpdatePlanRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Plan       string `json:"plan" binding:"required"`
	CustomerID string `json:"customer_id"`
}

type SubscriptionResponse struct {
	Plan              string     `json:"plan"`
	Status            string     `json:"status"`
	PriceID           *string    `json:"price_id"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}

func ToSubscriptionResponse(s *entity.Subscription) SubscriptionResponse {
	if s == nil {
		return SubscriptionResponse{Plan: "FREE", Status: "none"}
	}
	return SubscriptionResponse{
		Plan:              string(s.Plan()),
		Status:            s.Status,
		PriceID:           s.PriceID,
		CurrentPeriodEnd:  s.CurrentPeriodEnd,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
	}
}

type PaymentResponse struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	PaidAt    time.Time `json:"paid_at"`
}

type OverviewResponse struct {
	Bookings     []BookingResponse `json:"bookings"`
	Payments     []PaymentResponse `json:"payments"`
	PaidTotal    string            `json:"paid_total"`
	Currency     string            `json:"currency"`
	OpenBookings int               `json:"open_bookings"`
	PaidBookings int               `json:"paid_bookings"`
}

func ToOverviewResponse(o *admin.Overview) OverviewResponse {
	payments := make([]PaymentResponse, 0, len(o.Payments))
	for _, p := range o.Payments {
		payments = append(payments, PaymentResponse{
			ID:        p.ID,
			BookingID: p.BookingID,
			Amount:    p.Amount.Amount.StringFixed(2),
			Currency:  p.Amount.Currency,
			PaidAt:    p.PaidAt,
		})
	}
	return OverviewResponse{
		Bookings:     ToBookingResponses(o.Bookings),
		Payments:     payments,
		PaidTotal:    o.PaidTotal.Amount.StringFixed(2),
		Currency:     o.PaidTotal.Currency,
		OpenBookings: o.OpenBookings,
		PaidBookings: o.PaidBookings,
	}
}
