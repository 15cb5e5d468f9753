package repository

import (
	"context"
	"errors"

	"github.com/trackademy/batchline/internal/domain"
	"gorm.io/gorm"
)

type EnquiryRepository interface {
	Create(ctx context.Context, e *domain.Enquiry) error
	GetByID(ctx context.Context, id string) (*domain.Enquiry, error)
	FindByEmail(ctx context.Context, normalizedEmail string) (*domain.Enquiry, error)
	FindByPhone(ctx context.Context, normalizedPhone string) (*domain.Enquiry, error)
	List(ctx context.Context, status *domain.EnquiryStatus) ([]domain.Enquiry, error)
	Update(ctx context.Context, e *domain.Enquiry) error
	Delete(ctx context.Context, id string) error
}

type GormEnquiryRepo struct {
	db *gorm.DB
}

func NewGormEnquiryRepo(db *gorm.DB) *GormEnquiryRepo {
	return &GormEnquiryRepo{db: db}
}

func (r *GormEnquiryRepo) Create(ctx context.Context, e *domain.Enquiry) error {
	model := enquiryModelFromDomain(e)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return wrapStorageError(err)
	}
	if e != nil {
		*e = *enquiryModelToDomain(model)
	}
	return nil
}

func (r *GormEnquiryRepo) GetByID(ctx context.Context, id string) (*domain.Enquiry, error) {
	var model EnquiryModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapStorageError(err)
	}
	return enquiryModelToDomain(&model), nil
}

// FindByEmail matches the newest enquiry with the given normalized email.
func (r *GormEnquiryRepo) FindByEmail(ctx context.Context, normalizedEmail string) (*domain.Enquiry, error) {
	if normalizedEmail == "" {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, "normalized_email = ?", normalizedEmail)
}

// FindByPhone matches the newest enquiry with the given normalized phone.
func (r *GormEnquiryRepo) FindByPhone(ctx context.Context, normalizedPhone string) (*domain.Enquiry, error) {
	if normalizedPhone == "" {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, "normalized_phone = ?", normalizedPhone)
}

func (r *GormEnquiryRepo) findOne(ctx context.Context, query string, arg any) (*domain.Enquiry, error) {
	var model EnquiryModel
	err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapStorageError(err)
	}
	return enquiryModelToDomain(&model), nil
}

func (r *GormEnquiryRepo) List(ctx context.Context, status *domain.EnquiryStatus) ([]domain.Enquiry, error) {
	query := r.db.WithContext(ctx).Model(&EnquiryModel{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var models []EnquiryModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, wrapStorageError(err)
	}

	enquiries := make([]domain.Enquiry, 0, len(models))
	for i := range models {
		enquiries = append(enquiries, *enquiryModelToDomain(&models[i]))
	}
	return enquiries, nil
}

func (r *GormEnquiryRepo) Update(ctx context.Context, e *domain.Enquiry) error {
	model := enquiryModelFromDomain(e)
	result := r.db.WithContext(ctx).
		Model(&EnquiryModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"full_name":        model.FullName,
			"email":            model.Email,
			"normalized_email": model.NormalizedEmail,
			"phone":            model.Phone,
			"normalized_phone": model.NormalizedPhone,
			"course_name":      model.CourseName,
			"source":           model.Source,
			"notes":            model.Notes,
			"status":           model.Status,
		})
	if result.Error != nil {
		return wrapStorageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormEnquiryRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&EnquiryModel{}, "id = ?", id)
	if result.Error != nil {
		return wrapStorageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
