package booking

import (
	"context"
	"time"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/event"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

// statusWriter применяет переход статуса условной записью и публикует событие.
type statusWriter struct {
	bookingRepo repository.BookingRepository
	publisher   event.Publisher
}

func newStatusWriter(bookingRepo repository.BookingRepository, publisher event.Publisher) statusWriter {
	if publisher == nil {
		publisher = event.Nop{}
	}
	return statusWriter{bookingRepo: bookingRepo, publisher: publisher}
}

// apply возвращает актуальное бронирование и признак того, что запись была изменена.
func (w statusWriter) apply(
	ctx context.Context,
	actor valueobject.Actor,
	booking *entity.Booking,
	to valueobject.BookingStatus,
	note *string,
	at time.Time,
) (*entity.Booking, bool, error) {
	from, err := booking.PlanTransition(actor, to)
	if err != nil {
		return nil, false, err
	}
	if from == to {
		return booking, false, nil
	}

	change := repository.StatusChange{
		BookingID: booking.ID,
		From:      from,
		To:        to,
		At:        at.UTC(),
	}
	if to == valueobject.BookingStatusDeclined {
		change.Note = note
	}
	if to == valueobject.BookingStatusPaid {
		paidAt := at.UTC()
		change.PaidAt = &paidAt
	}

	updated, err := w.bookingRepo.CompareAndSetStatus(ctx, change)
	if err != nil {
		return nil, false, err
	}
	if !updated {
		// Статус успели изменить параллельно: повторный запрос того же перехода не считается ошибкой.
		current, err := w.bookingRepo.FindByID(ctx, booking.ID)
		if err != nil {
			return nil, false, err
		}
		if current.Status == to {
			return current, false, nil
		}
		return nil, false, apperror.InvalidTransition(current.Status.String(), to.String())
	}

	booking.ApplyTransition(to, change.Note, at)
	event.Emit(ctx, w.publisher, event.BookingStatusChanged{
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		MidwifeID:  booking.MidwifeID,
		From:       from,
		To:         to,
		ActorID:    actor.ID,
		OccurredAt: booking.UpdatedAt,
	})
	return booking, true, nil
}
