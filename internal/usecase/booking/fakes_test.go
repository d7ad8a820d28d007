package booking_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/event"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

// mockBookingRepository ведёт себя как таблица bookings: копии строк и условное обновление статуса.
type mockBookingRepository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
	// beforeCAS позволяет смоделировать параллельное изменение строки.
	beforeCAS func(b *entity.Booking)
	boosted   time.Time
}

func newMockBookingRepository() *mockBookingRepository {
	return &mockBookingRepository{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func (m *mockBookingRepository) put(b *entity.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bookings[b.ID] = &cp
}

func (m *mockBookingRepository) get(id uuid.UUID) *entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

func (m *mockBookingRepository) Create(ctx context.Context, b *entity.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bookings {
		if existing.ClientID != b.ClientID || existing.MidwifeID != b.MidwifeID {
			continue
		}
		if existing.Status.IsActive() {
			return apperror.ErrDuplicateActive
		}
		if b.CreatedAt.Sub(existing.CreatedAt) < 24*time.Hour {
			return apperror.ErrRequestCooldown
		}
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	if b := m.get(id); b != nil {
		return b, nil
	}
	return nil, apperror.ErrBookingNotFound
}

func (m *mockBookingRepository) FindByCheckoutSession(ctx context.Context, sessionID string) (*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.CheckoutSessionID != nil && *b.CheckoutSessionID == sessionID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, apperror.ErrBookingNotFound
}

func (m *mockBookingRepository) List(ctx context.Context, filter repository.BookingFilter) ([]*entity.Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entity.Booking
	for _, b := range m.bookings {
		if filter.ClientID != nil && b.ClientID != *filter.ClientID {
			continue
		}
		if filter.MidwifeID != nil && b.MidwifeID != *filter.MidwifeID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, b.Status) {
			continue
		}
		cp := *b
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockBookingRepository) CompareAndSetStatus(ctx context.Context, change repository.StatusChange) (bool, error) {
	if m.beforeCAS != nil {
		m.mu.Lock()
		if b, ok := m.bookings[change.BookingID]; ok {
			m.beforeCAS(b)
		}
		m.mu.Unlock()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[change.BookingID]
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

func (m *mockBookingRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID, checkoutURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return apperror.ErrBookingNotFound
	}
	b.CheckoutSessionID = &sessionID
	b.CheckoutURL = &checkoutURL
	return nil
}

func (m *mockBookingRepository) CountByStatus(ctx context.Context, filter repository.BookingFilter) (map[valueobject.BookingStatus]int, error) {
	list, _, _ := m.List(ctx, filter)
	counts := make(map[valueobject.BookingStatus]int)
	for _, b := range list {
		counts[b.Status]++
	}
	return counts, nil
}

func (m *mockBookingRepository) ListCalendarBookings(ctx context.Context, midwifeID uuid.UUID) ([]*entity.Booking, error) {
	list, _, _ := m.List(ctx, repository.BookingFilter{
		MidwifeID: &midwifeID,
		Statuses:  []valueobject.BookingStatus{valueobject.BookingStatusConfirmed, valueobject.BookingStatusPaid},
	})
	return list, nil
}

func (m *mockBookingRepository) BoostStale(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boosted = olderThan
	n := 0
	for _, b := range m.bookings {
		if b.Status == valueobject.BookingStatusRequested && !b.IsBoosted && !b.CreatedAt.After(olderThan) {
			b.IsBoosted = true
			n++
		}
	}
	return n, nil
}

func (m *mockBookingRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Booking, error) {
	list, _, _ := m.List(ctx, repository.BookingFilter{})
	return list, nil
}

func containsStatus(list []valueobject.BookingStatus, s valueobject.BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type mockProfileRepository struct {
	profiles map[uuid.UUID]*entity.Profile
	findErr  error
}

func newMockProfileRepository(profiles ...*entity.Profile) *mockProfileRepository {
	m := &mockProfileRepository{profiles: make(map[uuid.UUID]*entity.Profile)}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, apperror.ErrProfileNotFound
}

func (m *mockProfileRepository) FindByCalendarToken(ctx context.Context, token string) (*entity.Profile, error) {
	for _, p := range m.profiles {
		if p.CalendarToken != nil && *p.CalendarToken == token {
			return p, nil
		}
	}
	return nil, apperror.ErrProfileNotFound
}

func (m *mockProfileRepository) FindByStripeCustomer(ctx context.Context, customerID string) (*entity.Profile, error) {
	return nil, apperror.ErrProfileNotFound
}

func (m *mockProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileRepository) SetPlan(ctx context.Context, id uuid.UUID, plan valueobject.Plan) error {
	return nil
}

func (m *mockProfileRepository) SetVerification(ctx context.Context, id uuid.UUID, status valueobject.VerificationStatus) error {
	return nil
}

func (m *mockProfileRepository) SubmitForReview(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}

func (m *mockProfileRepository) SetCalendarToken(ctx context.Context, id uuid.UUID, token string) error {
	return nil
}

func (m *mockProfileRepository) SetPhoto(ctx context.Context, id uuid.UUID, path string) error {
	return nil
}

func (m *mockProfileRepository) SetStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error {
	return nil
}

func (m *mockProfileRepository) SearchMidwives(ctx context.Context, search repository.MidwifeSearch) ([]repository.MidwifeSearchResult, error) {
	return nil, nil
}

type mockPaymentRepository struct {
	payments map[string]*entity.Payment
	err      error
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{payments: make(map[string]*entity.Payment)}
}

func (m *mockPaymentRepository) Record(ctx context.Context, p *entity.Payment) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.payments[p.SessionID]; !ok {
		m.payments[p.SessionID] = p
	}
	return nil
}

func (m *mockPaymentRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Payment, error) {
	var result []*entity.Payment
	for _, p := range m.payments {
		result = append(result, p)
	}
	return result, nil
}

type mockGateway struct {
	requests []repository.CheckoutRequest
	err      error
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, req repository.CheckoutRequest) (*repository.CheckoutSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.requests = append(m.requests, req)
	return &repository.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.test/cs_test_123"}, nil
}

func (m *mockGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	return "https://billing.stripe.test/" + customerID, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.BookingStatusChanged
}

func (r *recordingPublisher) Publish(ctx context.Context, evt event.BookingStatusChanged) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func midwifeProfile(phone string) *entity.Profile {
	p := entity.NewProfile(uuid.New(), valueobject.RoleMidwife, "Anna Hebamme")
	if phone != "" {
		p.Phone = &phone
	}
	return p
}

func clientProfile(phone string) *entity.Profile {
	p := entity.NewProfile(uuid.New(), valueobject.RoleClient, "Lena Kundin")
	if phone != "" {
		p.Phone = &phone
	}
	return p
}

func defaultFee() valueobject.Money {
	return valueobject.MoneyFromCents(19900, "eur")
}
