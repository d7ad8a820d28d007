package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

// Availability описывает период, в который акушерка принимает заявки.
type Availability struct {
	ID        uuid.UUID
	MidwifeID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Note      *string
	CreatedAt time.Time
}

func NewAvailability(midwifeID uuid.UUID, start, end time.Time, note string) (*Availability, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите даты начала и окончания")
	}
	if end.Before(start) {
		return nil, apperror.New(apperror.ErrCodeValidation, "дата окончания раньше даты начала")
	}

	a := &Availability{
		ID:        uuid.New(),
		MidwifeID: midwifeID,
		StartDate: truncateDay(start),
		EndDate:   truncateDay(end),
		CreatedAt: time.Now().UTC(),
	}
	if n := strings.TrimSpace(note); n != "" {
		a.Note = &n
	}
	return a, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
