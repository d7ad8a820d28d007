package dispute_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/dispute"
)

type mockDisputeRepository struct {
	disputes map[uuid.UUID]*entity.Dispute
}

func newMockDisputeRepository() *mockDisputeRepository {
	return &mockDisputeRepository{disputes: make(map[uuid.UUID]*entity.Dispute)}
}

func (m *mockDisputeRepository) Create(ctx context.Context, d *entity.Dispute) error {
	for _, existing := range m.disputes {
		if existing.BookingID == d.BookingID && existing.Status == valueobject.DisputeStatusOpen {
			return apperror.ErrDisputeAlreadyOpen
		}
	}
	m.disputes[d.ID] = d
	return nil
}

func (m *mockDisputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Dispute, error) {
	if d, ok := m.disputes[id]; ok {
		return d, nil
	}
	return nil, apperror.ErrDisputeNotFound
}

func (m *mockDisputeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Dispute, error) {
	var result []*entity.Dispute
	for _, d := range m.disputes {
		if d.OpenedBy == userID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDisputeRepository) List(ctx context.Context, status *valueobject.DisputeStatus, limit, offset int) ([]*entity.Dispute, error) {
	var result []*entity.Dispute
	for _, d := range m.disputes {
		if status == nil || d.Status == *status {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDisputeRepository) Update(ctx context.Context, d *entity.Dispute) error {
	m.disputes[d.ID] = d
	return nil
}

type mockBookingRepository struct {
	repository.BookingRepository
	bookings map[uuid.UUID]*entity.Booking
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	if b, ok := m.bookings[id]; ok {
		return b, nil
	}
	return nil, apperror.ErrBookingNotFound
}

func TestDisputeFlow(t *testing.T) {
	b := &entity.Booking{ID: uuid.New(), ClientID: uuid.New(), MidwifeID: uuid.New(), Status: valueobject.BookingStatusPaid}
	bookings := &mockBookingRepository{bookings: map[uuid.UUID]*entity.Booking{b.ID: b}}
	disputes := newMockDisputeRepository()
	client := valueobject.Actor{ID: b.ClientID, Role: valueobject.RoleClient}
	admin := valueobject.Actor{ID: uuid.New(), Role: valueobject.RoleAdmin}

	open := dispute.NewOpenDisputeUseCase(disputes, bookings)
	d, err := open.Execute(context.Background(), client, b.ID, "Termin wurde nicht wahrgenommen")
	require.NoError(t, err)
	assert.Equal(t, valueobject.DisputeStatusOpen, d.Status)

	_, err = open.Execute(context.Background(), client, b.ID, "Noch ein Streitfall hier")
	assert.Equal(t, apperror.ErrCodeConflict, apperror.CodeOf(err))

	stranger := valueobject.Actor{ID: uuid.New(), Role: valueobject.RoleClient}
	_, err = open.Execute(context.Background(), stranger, b.ID, "Ich bin nicht beteiligt")
	assert.True(t, apperror.IsForbidden(err))

	mine, err := dispute.NewListMyDisputesUseCase(disputes).Execute(context.Background(), client)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	list := dispute.NewListDisputesUseCase(disputes)
	_, err = list.Execute(context.Background(), client, "", 20, 0)
	assert.True(t, apperror.IsForbidden(err))
	openOnes, err := list.Execute(context.Background(), admin, "open", 20, 0)
	require.NoError(t, err)
	assert.Len(t, openOnes, 1)

	resolve := dispute.NewResolveDisputeUseCase(disputes)
	_, err = resolve.Execute(context.Background(), client, d.ID, "erledigt")
	assert.True(t, apperror.IsForbidden(err))

	resolved, err := resolve.Execute(context.Background(), admin, d.ID, "Erstattung veranlasst")
	require.NoError(t, err)
	assert.Equal(t, valueobject.DisputeStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, admin.ID, *resolved.ResolvedBy)

	_, err = resolve.Execute(context.Background(), admin, d.ID, "noch einmal")
	assert.Equal(t, apperror.ErrCodeConflict, apperror.CodeOf(err))
}
