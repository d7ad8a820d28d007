package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/event"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type CreateBookingUseCase struct {
	bookingRepo repository.BookingRepository
	profileRepo repository.ProfileRepository
	publisher   event.Publisher
	fee         valueobject.Money
}

func NewCreateBookingUseCase(
	bookingRepo repository.BookingRepository,
	profileRepo repository.ProfileRepository,
	publisher event.Publisher,
	fee valueobject.Money,
) *CreateBookingUseCase {
	if publisher == nil {
		publisher = event.Nop{}
	}
	return &CreateBookingUseCase{
		bookingRepo: bookingRepo,
		profileRepo: profileRepo,
		publisher:   publisher,
		fee:         fee,
	}
}

func (uc *CreateBookingUseCase) Execute(ctx context.Context, actor valueobject.Actor, midwifeID uuid.UUID) (*entity.Booking, error) {
	if actor.Role != valueobject.RoleClient {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отправить заявку может только клиент")
	}
	return uc.CreateFor(ctx, actor.ID, midwifeID)
}

// CreateFor создаёт заявку от имени клиента. Используется также экспресс-бронированием после оплаты.
func (uc *CreateBookingUseCase) CreateFor(ctx context.Context, clientID, midwifeID uuid.UUID) (*entity.Booking, error) {
	midwife, err := uc.profileRepo.FindByID(ctx, midwifeID)
	if err != nil {
		return nil, err
	}
	if !midwife.IsMidwife() {
		return nil, apperror.New(apperror.ErrCodeNotFound, "акушерка не найдена")
	}

	booking, err := entity.NewBooking(clientID, midwifeID, uc.fee)
	if err != nil {
		return nil, err
	}

	// Уникальность активной пары и 24-часовой лимит проверяются ограничениями БД.
	if err := uc.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	event.Emit(ctx, uc.publisher, event.BookingStatusChanged{
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		MidwifeID:  booking.MidwifeID,
		To:         booking.Status,
		ActorID:    clientID,
		OccurredAt: booking.CreatedAt,
	})
	return booking, nil
}
