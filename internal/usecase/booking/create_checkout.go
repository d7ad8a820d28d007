package booking

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const bookingProductName = "Hebammen-Vermittlung"

type CreateCheckoutUseCase struct {
	bookingRepo repository.BookingRepository
	gateway     repository.PaymentGateway
	baseURL     string
}

func NewCreateCheckoutUseCase(bookingRepo repository.BookingRepository, gateway repository.PaymentGateway, baseURL string) *CreateCheckoutUseCase {
	return &CreateCheckoutUseCase{
		bookingRepo: bookingRepo,
		gateway:     gateway,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// Execute создаёт checkout-сессию для оплаты подтверждённого бронирования клиентом.
func (uc *CreateCheckoutUseCase) Execute(ctx context.Context, actor valueobject.Actor, bookingID uuid.UUID) (*repository.CheckoutSession, error) {
	if uc.gateway == nil {
		return nil, apperror.ErrPaymentGatewayMissing
	}

	booking, err := uc.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != valueobject.RoleClient || actor.ID != booking.ClientID {
		return nil, apperror.ErrForbidden
	}
	if booking.Status != valueobject.BookingStatusConfirmed {
		return nil, apperror.ErrBookingNotPayable
	}

	returnURL := uc.baseURL + "/dashboard/bookings/" + booking.ID.String()
	session, err := uc.gateway.CreateCheckoutSession(ctx, repository.CheckoutRequest{
		Mode:        repository.CheckoutModePayment,
		ClientRef:   actor.ID.String(),
		Amount:      booking.Fee,
		ProductName: bookingProductName,
		Metadata: map[string]string{
			"booking_id": booking.ID.String(),
			"client_id":  booking.ClientID.String(),
			"midwife_id": booking.MidwifeID.String(),
		},
		SuccessURL: returnURL + "?paid=1",
		CancelURL:  returnURL + "?canceled=1",
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeGatewayError, "не удалось создать сессию оплаты")
	}

	if err := uc.bookingRepo.SetCheckoutSession(ctx, booking.ID, session.ID, session.URL); err != nil {
		return nil, err
	}
	return session, nil
}
