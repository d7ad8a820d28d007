package booking

import (
	"context"
	"time"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
)

// BoostStaleRequestsUseCase поднимает заявки, оставшиеся без ответа у PRO-акушерок дольше суток.
type BoostStaleRequestsUseCase struct {
	bookingRepo repository.BookingRepository
}

func NewBoostStaleRequestsUseCase(bookingRepo repository.BookingRepository) *BoostStaleRequestsUseCase {
	return &BoostStaleRequestsUseCase{bookingRepo: bookingRepo}
}

func (uc *BoostStaleRequestsUseCase) Execute(ctx context.Context, now time.Time) (int, error) {
	return uc.bookingRepo.BoostStale(ctx, now.Add(-entity.BoostAfter))
}
