package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/event"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
)

type UpdateStatusInput struct {
	BookingID uuid.UUID
	Status    string
	Note      *string
}

type UpdateBookingStatusUseCase struct {
	bookingRepo repository.BookingRepository
	writer      statusWriter
}

func NewUpdateBookingStatusUseCase(bookingRepo repository.BookingRepository, publisher event.Publisher) *UpdateBookingStatusUseCase {
	return &UpdateBookingStatusUseCase{
		bookingRepo: bookingRepo,
		writer:      newStatusWriter(bookingRepo, publisher),
	}
}

func (uc *UpdateBookingStatusUseCase) Execute(ctx context.Context, actor valueobject.Actor, input UpdateStatusInput) (*entity.Booking, error) {
	to, err := valueobject.NewBookingStatus(input.Status)
	if err != nil {
		return nil, err
	}
	if err := entity.ValidateBookingNote(input.Note); err != nil {
		return nil, err
	}

	booking, err := uc.bookingRepo.FindByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}

	updated, _, err := uc.writer.apply(ctx, actor, booking, to, input.Note, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return updated, nil
}
