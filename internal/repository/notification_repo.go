package repository

import (
	"context"
	"errors"

	"github.com/trackademy/batchline/internal/domain"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
	CountUnread(ctx context.Context) (int64, error)
}

type GormNotificationRepo struct {
	db *gorm.DB
}

func NewGormNotificationRepo(db *gorm.DB) *GormNotificationRepo {
	return &GormNotificationRepo{db: db}
}

func (r *GormNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	model := notificationModelFromDomain(n)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return wrapStorageError(err)
	}
	if n != nil {
		*n = *notificationModelToDomain(model)
	}
	return nil
}

// List returns notifications with unread first, newest within each group.
func (r *GormNotificationRepo) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	query := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Order("read ASC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []NotificationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, wrapStorageError(err)
	}

	notifications := make([]domain.Notification, 0, len(models))
	for i := range models {
		notifications = append(notifications, *notificationModelToDomain(&models[i]))
	}
	return notifications, nil
}

func (r *GormNotificationRepo) MarkRead(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return wrapStorageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormNotificationRepo) MarkAllRead(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("read = ?", false).
		Update("read", true)
	if result.Error != nil {
		return 0, wrapStorageError(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *GormNotificationRepo) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("read = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, wrapStorageError(err)
	}
	return count, nil
}
