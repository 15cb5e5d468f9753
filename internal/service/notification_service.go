package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/trackademy/batchline/internal/domain"
	"github.com/trackademy/batchline/internal/repository"
	"go.uber.org/zap"
)

const defaultNotificationListLimit = 50

// NotificationService exposes the in-app notification feed. Notifications
// are written by the lifecycle automation and the enquiry webhook; this
// service only reads and flips read flags.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

func NewNotificationService(notifications repository.NotificationRepository, logger *zap.Logger) (*NotificationService, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{notifications: notifications, logger: logger}, nil
}

// List returns the newest notifications first, capped at limit.
func (s *NotificationService) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationListLimit
	}
	return retryOnce(ctx, func() ([]domain.Notification, error) {
		return s.notifications.List(ctx, limit)
	})
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: notification id is required", domain.ErrValidation)
	}
	return s.notifications.MarkRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	marked, err := s.notifications.MarkAllRead(ctx)
	if err != nil {
		return 0, err
	}
	if marked > 0 {
		s.logger.Info("notifications marked read", zap.Int64("count", marked))
	}
	return marked, nil
}

func (s *NotificationService) CountUnread(ctx context.Context) (int64, error) {
	return retryOnce(ctx, func() (int64, error) {
		return s.notifications.CountUnread(ctx)
	})
}
