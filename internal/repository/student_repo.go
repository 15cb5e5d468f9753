package repository

import (
	"context"
	"errors"

	"github.com/trackademy/batchline/internal/domain"
	"gorm.io/gorm"
)

type StudentRepository interface {
	Create(ctx context.Context, s *domain.Student) error
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	List(ctx context.Context, batchNumber string) ([]domain.Student, error)
	Update(ctx context.Context, s *domain.Student) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByBatch(ctx context.Context, batchNumber string) (int64, error)
}

type GormStudentRepo struct {
	db *gorm.DB
}

func NewGormStudentRepo(db *gorm.DB) *GormStudentRepo {
	return &GormStudentRepo{db: db}
}

func (r *GormStudentRepo) Create(ctx context.Context, s *domain.Student) error {
	model := studentModelFromDomain(s)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return wrapStorageError(err)
	}
	if s != nil {
		*s = *studentModelToDomain(model)
	}
	return nil
}

func (r *GormStudentRepo) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	var model StudentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapStorageError(err)
	}
	return studentModelToDomain(&model), nil
}

// List returns all students, optionally filtered to one batch number.
// Dangling batch references are returned as-is; this is where the UI
// resolves them lazily.
func (r *GormStudentRepo) List(ctx context.Context, batchNumber string) ([]domain.Student, error) {
	query := r.db.WithContext(ctx).Model(&StudentModel{})
	if batchNumber != "" {
		query = query.Where("batch_number = ?", batchNumber)
	}

	var models []StudentModel
	if err := query.Order("full_name ASC").Find(&models).Error; err != nil {
		return nil, wrapStorageError(err)
	}

	students := make([]domain.Student, 0, len(models))
	for i := range models {
		students = append(students, *studentModelToDomain(&models[i]))
	}
	return students, nil
}

func (r *GormStudentRepo) Update(ctx context.Context, s *domain.Student) error {
	model := studentModelFromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&StudentModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"full_name":    model.FullName,
			"email":        model.Email,
			"phone":        model.Phone,
			"batch_number": model.BatchNumber,
			"status":       model.Status,
		})
	if result.Error != nil {
		return wrapStorageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormStudentRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&StudentModel{}, "id = ?", id)
	if result.Error != nil {
		return wrapStorageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormStudentRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&StudentModel{}).Count(&count).Error; err != nil {
		return 0, wrapStorageError(err)
	}
	return count, nil
}

func (r *GormStudentRepo) CountByBatch(ctx context.Context, batchNumber string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&StudentModel{}).
		Where("batch_number = ?", batchNumber).
		Count(&count).Error
	if err != nil {
		return 0, wrapStorageError(err)
	}
	return count, nil
}
