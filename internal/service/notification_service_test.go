package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/pkg/config"
)

type notificationRepoStub struct {
	mu    sync.Mutex
	saved []models.Notification
	read  []string
}

func (m *notificationRepoStub) Create(ctx context.Context, notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, *notification)
	return nil
}

func (m *notificationRepoStub) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Notification
	for _, n := range m.saved {
		if n.RecipientID == recipientID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *notificationRepoStub) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.read = append(m.read, id)
	return nil
}

func notificationConfig() config.NotificationsConfig {
	return config.NotificationsConfig{
		Workers:    1,
		BufferSize: 8,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	}
}

func TestNotificationDeliveredThroughQueue(t *testing.T) {
	repo := &notificationRepoStub{}
	service := NewNotificationService(repo, notificationConfig(), zap.NewNop())
	service.Start(context.Background())

	defer service.Stop()

	require.NoError(t, service.Notify(context.Background(), "beneficiary-1", "Slot available", "A slot opened up", "INFO"))
	require.Eventually(t, func() bool {
		got, err := service.List(context.Background(), "beneficiary-1", 10)
		return err == nil && len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	notifications, err := service.List(context.Background(), "beneficiary-1", 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Slot available", notifications[0].Title)
	assert.Equal(t, "INFO", notifications[0].Severity)
}

func TestNotificationMarkRead(t *testing.T) {
	repo := &notificationRepoStub{}
	service := NewNotificationService(repo, notificationConfig(), zap.NewNop())

	require.NoError(t, service.MarkRead(context.Background(), "notif-1"))
	assert.Equal(t, []string{"notif-1"}, repo.read)
}
