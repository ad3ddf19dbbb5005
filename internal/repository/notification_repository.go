package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rehasoft/rehab-center-api/internal/models"
)

// NotificationRepository persists the notification inbox.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores a notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	notification.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO notifications (id, recipient_id, title, message, severity, link, read_at, created_at) VALUES (:id, :recipient_id, :title, :message, :severity, :link, :read_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByRecipient returns notifications for a recipient, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT id, recipient_id, title, message, severity, link, read_at, created_at FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC LIMIT %d", limit)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, recipientID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead stamps a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE notifications SET read_at = $2 WHERE id = $1 AND read_at IS NULL`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
