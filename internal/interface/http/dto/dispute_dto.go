package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
)

type OpenDisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

type DisputeResponse struct {
	ID         uuid.UUID  `json:"id"`
	BookingID  uuid.UUID  `json:"booking_id"`
	OpenedBy   uuid.UUID  `json:"opened_by"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	Resolution *string    `json:"resolution"`
	ResolvedBy *uuid.UUID `json:"resolved_by"`
	ResolvedAt *time.Time `json:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func ToDisputeResponse(d *entity.Dispute) DisputeResponse {
	return DisputeResponse{
		ID:         d.ID,
		BookingID:  d.BookingID,
		OpenedBy:   d.OpenedBy,
		Reason:     d.Reason,
		Status:     string(d.Status),
		Resolution: d.Resolution,
		ResolvedBy: d.ResolvedBy,
		ResolvedAt: d.ResolvedAt,
		CreatedAt:  d.CreatedAt,
	}
}

func ToDisputeResponses(items []*entity.Dispute) []DisputeResponse {
	out := make([]DisputeResponse, 0, len(items))
	for _, d := range items {
		out = append(out, ToDisputeResponse(d))
	}
	return out
}
