package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/pkg/config"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
	"github.com/rehasoft/rehab-center-api/pkg/jobs"
)

type notificationRepo interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// NotificationService persists notifications through a background worker
// queue so scheduling flows never wait on notification delivery.
type NotificationService struct {
	repo   notificationRepo
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService builds the notification service and its queue.
// Call Start before enqueueing and Stop on shutdown.
func NewNotificationService(repo notificationRepo, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.handleJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Notify enqueues a notification for asynchronous persistence.
func (s *NotificationService) Notify(ctx context.Context, recipientID, title, message, severity string) error {
	notification := &models.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Severity:    severity,
	}
	if err := s.queue.Enqueue(jobs.Job{ID: notification.ID, Type: "notification.deliver", Payload: notification}); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(*models.Notification)
	if !ok {
		s.logger.Sugar().Errorw("unexpected notification payload", "job_id", job.ID)
		return nil
	}
	return s.repo.Create(ctx, notification)
}

// List returns the recipient's inbox, newest first.
func (s *NotificationService) List(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	notifications, err := s.repo.ListByRecipient(ctx, recipientID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead stamps a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}
