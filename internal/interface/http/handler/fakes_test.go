package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type memBookings struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.Booking
}

func newMemBookings() *memBookings {
	return &memBookings{items: make(map[uuid.UUID]*entity.Booking)}
}

func (m *memBookings) Create(ctx context.Context, b *entity.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.ClientID == b.ClientID && existing.MidwifeID == b.MidwifeID && existing.Status.IsActive() {
			return apperror.ErrDuplicateActive
		}
	}
	cp := *b
	m.items[b.ID] = &cp
	return nil
}

func (m *memBookings) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, apperror.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBookings) FindByCheckoutSession(ctx context.Context, sessionID string) (*entity.Booking, error) {
	return nil, apperror.ErrBookingNotFound
}

func (m *memBookings) List(ctx context.Context, filter repository.BookingFilter) ([]*entity.Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Booking
	for _, b := range m.items {
		if filter.ClientID != nil && b.ClientID != *filter.ClientID {
			continue
		}
		if filter.MidwifeID != nil && b.MidwifeID != *filter.MidwifeID {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *memBookings) CompareAndSetStatus(ctx context.Context, change repository.StatusChange) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[change.BookingID]
	if !ok || b.Status != change.From {
		return false, nil
	}
	b.Status = change.To
	b.PaidAt = change.PaidAt
	if change.Note != nil {
		b.Note = change.Note
	}
	b.UpdatedAt = change.At
	return true, nil
}

func (m *memBookings) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID, checkoutURL string) error {
	return nil
}

func (m *memBookings) CountByStatus(ctx context.Context, filter repository.BookingFilter) (map[valueobject.BookingStatus]int, error) {
	items, _, _ := m.List(ctx, filter)
	out := make(map[valueobject.BookingStatus]int)
	for _, b := range items {
		out[b.Status]++
	}
	return out, nil
}

func (m *memBookings) ListCalendarBookings(ctx context.Context, midwifeID uuid.UUID) ([]*entity.Booking, error) {
	items, _, _ := m.List(ctx, repository.BookingFilter{MidwifeID: &midwifeID})
	var out []*entity.Booking
	for _, b := range items {
		if b.Status == valueobject.BookingStatusConfirmed || b.Status == valueobject.BookingStatusPaid {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) BoostStale(ctx context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}

func (m *memBookings) ListRecent(ctx context.Context, limit int) ([]*entity.Booking, error) {
	items, _, _ := m.List(ctx, repository.BookingFilter{})
	return items, nil
}

type memProfiles struct {
	items map[uuid.UUID]*entity.Profile
}

func newMemProfiles(profiles ...*entity.Profile) *memProfiles {
	m := &memProfiles{items: make(map[uuid.UUID]*entity.Profile)}
	for _, p := range profiles {
		m.items[p.ID] = p
	}
	return m
}

func (m *memProfiles) Create(ctx context.Context, p *entity.Profile) error {
	m.items[p.ID] = p
	return nil
}

func (m *memProfiles) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, apperror.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) FindByCalendarToken(ctx context.Context, token string) (*entity.Profile, error) {
	for _, p := range m.items {
		if p.CalendarToken != nil && *p.CalendarToken == token {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.ErrProfileNotFound
}

func (m *memProfiles) FindByStripeCustomer(ctx context.Context, customerID string) (*entity.Profile, error) {
	return nil, apperror.ErrProfileNotFound
}

func (m *memProfiles) Update(ctx context.Context, p *entity.Profile) error {
	m.items[p.ID] = p
	return nil
}

func (m *memProfiles) SetPlan(ctx context.Context, id uuid.UUID, plan valueobject.Plan) error {
	return nil
}

func (m *memProfiles) SetVerification(ctx context.Context, id uuid.UUID, status valueobject.VerificationStatus) error {
	return nil
}

func (m *memProfiles) SubmitForReview(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}

func (m *memProfiles) SetCalendarToken(ctx context.Context, id uuid.UUID, token string) error {
	return nil
}

func (m *memProfiles) SetPhoto(ctx context.Context, id uuid.UUID, path string) error {
	return nil
}

func (m *memProfiles) SetStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error {
	return nil
}

func (m *memProfiles) SearchMidwives(ctx context.Context, search repository.MidwifeSearch) ([]repository.MidwifeSearchResult, error) {
	return nil, nil
}
