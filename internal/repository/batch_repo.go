package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/trackademy/batchline/internal/domain"
	"gorm.io/gorm"
)

// enrolledCountSelect attaches the live student count to every batch row.
const enrolledCountSelect = "batches.*, " +
	"(SELECT COUNT(*) FROM students s WHERE s.batch_number = batches.id) AS enrolled_count"

type BatchRepository interface {
	Create(ctx context.Context, b *domain.Batch) error
	GetByID(ctx context.Context, id string) (*domain.Batch, error)
	List(ctx context.Context) ([]domain.Batch, error)
	Update(ctx context.Context, id string, patch domain.BatchPatch) (*domain.Batch, error)
	Delete(ctx context.Context, id string) error
	CountByCourseYear(ctx context.Context, normalizedCourse string, year int) (int64, error)
	Exists(ctx context.Context, id string) (bool, error)
	CompleteWithCascade(ctx context.Context, id string, completedAt time.Time) (int64, error)
	ReactivateWithCascade(ctx context.Context, id string) (int64, error)
	MarkEndingSoonNotified(ctx context.Context, id string, at time.Time) error
}

type GormBatchRepo struct {
	db *gorm.DB
}

func NewGormBatchRepo(db *gorm.DB) *GormBatchRepo {
	return &GormBatchRepo{db: db}
}

func (r *GormBatchRepo) Create(ctx context.Context, b *domain.Batch) error {
	model := batchModelFromDomain(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return wrapStorageError(err)
	}
	if b != nil {
		*b = *batchModelToDomain(model)
	}
	return nil
}

func (r *GormBatchRepo) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	var model BatchModel
	err := r.db.WithContext(ctx).
		Select(enrolledCountSelect).
		First(&model, "batches.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapStorageError(err)
	}
	return batchModelToDomain(&model), nil
}

func (r *GormBatchRepo) List(ctx context.Context) ([]domain.Batch, error) {
	var models []BatchModel
	err := r.db.WithContext(ctx).
		Select(enrolledCountSelect).
		Order("start_date DESC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, wrapStorageError(err)
	}

	batches := make([]domain.Batch, 0, len(models))
	for i := range models {
		batches = append(batches, *batchModelToDomain(&models[i]))
	}
	return batches, nil
}

func (r *GormBatchRepo) Update(ctx context.Context, id string, patch domain.BatchPatch) (*domain.Batch, error) {
	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Trainer != nil {
		fields["trainer"] = *patch.Trainer
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Capacity != nil {
		fields["capacity"] = *patch.Capacity
	}
	if patch.StartDate != nil {
		fields["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		fields["end_date"] = *patch.EndDate
	}

	if len(fields) > 0 {
		result := r.db.WithContext(ctx).
			Model(&BatchModel{}).
			Where("id = ?", id).
			Updates(fields)
		if result.Error != nil {
			return nil, wrapStorageError(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, domain.ErrNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *GormBatchRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&BatchModel{}, "id = ?", id)
	if result.Error != nil {
		return wrapStorageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormBatchRepo) CountByCourseYear(ctx context.Context, normalizedCourse string, year int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BatchModel{}).
		Where("normalized_course = ? AND EXTRACT(YEAR FROM start_date) = ?", normalizedCourse, year).
		Count(&count).Error
	if err != nil {
		return 0, wrapStorageError(err)
	}
	return count, nil
}

func (r *GormBatchRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BatchModel{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, wrapStorageError(err)
	}
	return count > 0, nil
}

// CompleteWithCascade marks a batch Completed and flips its Active students
// to Completed in a single transaction, so a crash cannot leave the batch
// done with its students half-updated. Returns the number of students
// flipped. ErrConflict when the batch was already completed.
func (r *GormBatchRepo) CompleteWithCascade(ctx context.Context, id string, completedAt time.Time) (int64, error) {
	var studentsFlipped int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BatchModel{}).
			Where("id = ? AND completed_at IS NULL", id).
			Updates(map[string]any{
				"status":       domain.BatchStatusCompleted,
				"completed_at": completedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&BatchModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domain.ErrNotFound
			}
			return domain.ErrConflict
		}

		cascade := tx.Model(&StudentModel{}).
			Where("batch_number = ? AND status = ?", id, domain.StudentStatusActive).
			Update("status", domain.StudentStatusCompleted)
		if cascade.Error != nil {
			return cascade.Error
		}
		studentsFlipped = cascade.RowsAffected
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return 0, err
		}
		return 0, wrapStorageError(err)
	}
	return studentsFlipped, nil
}

// ReactivateWithCascade restores a batch to Active, clears the completion
// timestamp, and flips the batch's Completed students back to Active in the
// same transaction. Idempotent: reactivating an already-active batch flips
// nothing further.
func (r *GormBatchRepo) ReactivateWithCascade(ctx context.Context, id string) (int64, error) {
	var studentsFlipped int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BatchModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status":       domain.BatchStatusActive,
				"completed_at": nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		cascade := tx.Model(&StudentModel{}).
			Where("batch_number = ? AND status = ?", id, domain.StudentStatusCompleted).
			Update("status", domain.StudentStatusActive)
		if cascade.Error != nil {
			return cascade.Error
		}
		studentsFlipped = cascade.RowsAffected
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, err
		}
		return 0, wrapStorageError(err)
	}
	return studentsFlipped, nil
}

// MarkEndingSoonNotified records the one-shot ending-soon notification
// timestamp. Only the first call for a batch wins; later calls are no-ops
// so automation reruns cannot re-send the warning.
func (r *GormBatchRepo) MarkEndingSoonNotified(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&BatchModel{}).
		Where("id = ? AND ending_soon_notified_at IS NULL", id).
		Update("ending_soon_notified_at", at)
	if result.Error != nil {
		return wrapStorageError(result.Error)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
