package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/hebammen-backend/internal/models"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
	"github.com/ignatzorin/hebammen-backend/internal/repository"
)

type mockNotificationRepository struct {
	items     []*models.Notification
	lastLimit int
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	m.items = append(m.items, n)
	return nil
}

func (m *mockNotificationRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	m.lastLimit = limit
	var result []models.Notification
	for _, n := range m.items {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			result = append(result, *n)
		}
	}
	return result, nil
}

func (m *mockNotificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	for _, n := range m.items {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (m *mockNotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	for _, n := range m.items {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func TestNotificationService_Lifecycle(t *testing.T) {
	repo := &mockNotificationRepository{}
	svc := NewNotificationService(repo)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	n, err := svc.CreateNotification(ctx, owner, "booking.status_changed", map[string]string{"to": "CONFIRMED"})
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(n.Payload, &payload))
	assert.Equal(t, "booking.status_changed", payload["event"])

	count, err := svc.CountUnread(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = svc.MarkAsRead(ctx, n.ID, stranger)
	assert.True(t, apperror.IsNotFound(err))

	require.NoError(t, svc.MarkAsRead(ctx, n.ID, owner))
	count, _ = svc.CountUnread(ctx, owner)
	assert.Equal(t, 0, count)
}

func TestNotificationService_ListClampsLimit(t *testing.T) {
	repo := &mockNotificationRepository{}
	svc := NewNotificationService(repo)

	_, err := svc.ListNotifications(context.Background(), uuid.New(), 1000, -5, false)
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastLimit)
}
