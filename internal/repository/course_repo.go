package repository

import (
	"context"
	"errors"

	"github.com/trackademy/batchline/internal/domain"
	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(ctx context.Context, c *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	FindByName(ctx context.Context, name string) (*domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error)
	Update(ctx context.Context, c *domain.Course) error
	Delete(ctx context.Context, id string) error
}

type GormCourseRepo struct {
	db *gorm.DB
}

func NewGormCourseRepo(db *gorm.DB) *GormCourseRepo {
	return &GormCourseRepo{db: db}
}

func (r *GormCourseRepo) Create(ctx context.Context, c *domain.Course) error {
	model := courseModelFromDomain(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return wrapStorageError(err)
	}
	if c != nil {
		*c = *courseModelToDomain(model)
	}
	return nil
}

func (r *GormCourseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	var model CourseModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapStorageError(err)
	}
	return courseModelToDomain(&model), nil
}

func (r *GormCourseRepo) FindByName(ctx context.Context, name string) (*domain.Course, error) {
	var model CourseModel
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapStorageError(err)
	}
	return courseModelToDomain(&model), nil
}

func (r *GormCourseRepo) List(ctx context.Context) ([]domain.Course, error) {
	var models []CourseModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, wrapStorageError(err)
	}

	courses := make([]domain.Course, 0, len(models))
	for i := range models {
		courses = append(courses, *courseModelToDomain(&models[i]))
	}
	return courses, nil
}

func (r *GormCourseRepo) Update(ctx context.Context, c *domain.Course) error {
	model := courseModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(&CourseModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":        model.Name,
			"prefix":      model.Prefix,
			"description": model.Description,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domain.ErrConflict
		}
		return wrapStorageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormCourseRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&CourseModel{}, "id = ?", id)
	if result.Error != nil {
		return wrapStorageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
