package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type Dispute struct {
	ID         uuid.UUID
	BookingID  uuid.UUID
	OpenedBy   uuid.UUID
	Reason     string
	Status     valueobject.DisputeStatus
	Resolution *string
	ResolvedBy *uuid.UUID
	ResolvedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewDispute(booking *Booking, actor valueobject.Actor, reason string) (*Dispute, error) {
	if !booking.IsParty(actor.ID) {
		return nil, apperror.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < 10 {
		return nil, apperror.New(apperror.ErrCodeValidation, "опишите причину спора (минимум 10 символов)")
	}

	now := time.Now().UTC()
	return &Dispute{
		ID:        uuid.New(),
		BookingID: booking.ID,
		OpenedBy:  actor.ID,
		Reason:    reason,
		Status:    valueobject.DisputeStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Resolve закрывает спор. Разрешать споры может только администратор.
func (d *Dispute) Resolve(actor valueobject.Actor, resolution string) error {
	if !actor.IsAdmin() {
		return apperror.ErrForbidden
	}
	if d.Status != valueobject.DisputeStatusOpen {
		return apperror.New(apperror.ErrCodeConflict, "спор уже закрыт")
	}
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return apperror.New(apperror.ErrCodeValidation, "решение обязательно")
	}

	now := time.Now().UTC()
	adminID := actor.ID
	d.Status = valueobject.DisputeStatusResolved
	d.Resolution = &resolution
	d.ResolvedBy = &adminID
	d.ResolvedAt = &now
	d.UpdatedAt = now
	return nil
}
