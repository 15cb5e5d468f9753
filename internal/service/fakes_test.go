package service

import (
	"context"
	"time"

	"github.com/trackademy/batchline/internal/domain"
	"github.com/trackademy/batchline/internal/queue"
	"github.com/trackademy/batchline/internal/repository"
)

type fakeBatchRepo struct {
	createFn                func(ctx context.Context, b *domain.Batch) error
	getByIDFn               func(ctx context.Context, id string) (*domain.Batch, error)
	listFn                  func(ctx context.Context) ([]domain.Batch, error)
	updateFn                func(ctx context.Context, id string, patch domain.BatchPatch) (*domain.Batch, error)
	deleteFn                func(ctx context.Context, id string) error
	countByCourseYearFn     func(ctx context.Context, normalizedCourse string, year int) (int64, error)
	existsFn                func(ctx context.Context, id string) (bool, error)
	completeWithCascadeFn   func(ctx context.Context, id string, completedAt time.Time) (int64, error)
	reactivateWithCascadeFn func(ctx context.Context, id string) (int64, error)
	markEndingSoonFn        func(ctx context.Context, id string, at time.Time) error
}

func (f *fakeBatchRepo) Create(ctx context.Context, b *domain.Batch) error {
	if f.createFn != nil {
		return f.createFn(ctx, b)
	}
	return nil
}

func (f *fakeBatchRepo) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBatchRepo) List(ctx context.Context) ([]domain.Batch, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeBatchRepo) Update(ctx context.Context, id string, patch domain.BatchPatch) (*domain.Batch, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBatchRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeBatchRepo) CountByCourseYear(ctx context.Context, normalizedCourse string, year int) (int64, error) {
	if f.countByCourseYearFn != nil {
		return f.countByCourseYearFn(ctx, normalizedCourse, year)
	}
	return 0, nil
}

func (f *fakeBatchRepo) Exists(ctx context.Context, id string) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, id)
	}
	return false, nil
}

func (f *fakeBatchRepo) CompleteWithCascade(ctx context.Context, id string, completedAt time.Time) (int64, error) {
	if f.completeWithCascadeFn != nil {
		return f.completeWithCascadeFn(ctx, id, completedAt)
	}
	return 0, nil
}

func (f *fakeBatchRepo) ReactivateWithCascade(ctx context.Context, id string) (int64, error) {
	if f.reactivateWithCascadeFn != nil {
		return f.reactivateWithCascadeFn(ctx, id)
	}
	return 0, nil
}

func (f *fakeBatchRepo) MarkEndingSoonNotified(ctx context.Context, id string, at time.Time) error {
	if f.markEndingSoonFn != nil {
		return f.markEndingSoonFn(ctx, id, at)
	}
	return nil
}

var _ repository.BatchRepository = (*fakeBatchRepo)(nil)

type fakeStudentRepo struct {
	createFn       func(ctx context.Context, s *domain.Student) error
	getByIDFn      func(ctx context.Context, id string) (*domain.Student, error)
	listFn         func(ctx context.Context, batchNumber string) ([]domain.Student, error)
	updateFn       func(ctx context.Context, s *domain.Student) error
	deleteFn       func(ctx context.Context, id string) error
	countFn        func(ctx context.Context) (int64, error)
	countByBatchFn func(ctx context.Context, batchNumber string) (int64, error)
}

func (f *fakeStudentRepo) Create(ctx context.Context, s *domain.Student) error {
	if f.createFn != nil {
		return f.createFn(ctx, s)
	}
	return nil
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStudentRepo) List(ctx context.Context, batchNumber string) ([]domain.Student, error) {
	if f.listFn != nil {
		return f.listFn(ctx, batchNumber)
	}
	return nil, nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, s *domain.Student) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, s)
	}
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeStudentRepo) Count(ctx context.Context) (int64, error) {
	if f.countFn != nil {
		return f.countFn(ctx)
	}
	return 0, nil
}

func (f *fakeStudentRepo) CountByBatch(ctx context.Context, batchNumber string) (int64, error) {
	if f.countByBatchFn != nil {
		return f.countByBatchFn(ctx, batchNumber)
	}
	return 0, nil
}

var _ repository.StudentRepository = (*fakeStudentRepo)(nil)

type fakeCourseRepo struct {
	createFn     func(ctx context.Context, c *domain.Course) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Course, error)
	findByNameFn func(ctx context.Context, name string) (*domain.Course, error)
	listFn       func(ctx context.Context) ([]domain.Course, error)
	updateFn     func(ctx context.Context, c *domain.Course) error
	deleteFn     func(ctx context.Context, id string) error
}

func (f *fakeCourseRepo) Create(ctx context.Context, c *domain.Course) error {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return nil
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCourseRepo) FindByName(ctx context.Context, name string) (*domain.Course, error) {
	if f.findByNameFn != nil {
		return f.findByNameFn(ctx, name)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCourseRepo) List(ctx context.Context) ([]domain.Course, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, c *domain.Course) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, c)
	}
	return nil
}

func (f *fakeCourseRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

var _ repository.CourseRepository = (*fakeCourseRepo)(nil)

type fakeEnquiryRepo struct {
	createFn      func(ctx context.Context, e *domain.Enquiry) error
	getByIDFn     func(ctx context.Context, id string) (*domain.Enquiry, error)
	findByEmailFn func(ctx context.Context, normalizedEmail string) (*domain.Enquiry, error)
	findByPhoneFn func(ctx context.Context, normalizedPhone string) (*domain.Enquiry, error)
	listFn        func(ctx context.Context, status *domain.EnquiryStatus) ([]domain.Enquiry, error)
	updateFn      func(ctx context.Context, e *domain.Enquiry) error
	deleteFn      func(ctx context.Context, id string) error
}

func (f *fakeEnquiryRepo) Create(ctx context.Context, e *domain.Enquiry) error {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return nil
}

func (f *fakeEnquiryRepo) GetByID(ctx context.Context, id string) (*domain.Enquiry, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEnquiryRepo) FindByEmail(ctx context.Context, normalizedEmail string) (*domain.Enquiry, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, normalizedEmail)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEnquiryRepo) FindByPhone(ctx context.Context, normalizedPhone string) (*domain.Enquiry, error) {
	if f.findByPhoneFn != nil {
		return f.findByPhoneFn(ctx, normalizedPhone)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEnquiryRepo) List(ctx context.Context, status *domain.EnquiryStatus) ([]domain.Enquiry, error) {
	if f.listFn != nil {
		return f.listFn(ctx, status)
	}
	return nil, nil
}

func (f *fakeEnquiryRepo) Update(ctx context.Context, e *domain.Enquiry) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, e)
	}
	return nil
}

func (f *fakeEnquiryRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

var _ repository.EnquiryRepository = (*fakeEnquiryRepo)(nil)

type fakeNotificationRepo struct {
	createFn      func(ctx context.Context, n *domain.Notification) error
	listFn        func(ctx context.Context, limit int) ([]domain.Notification, error)
	markReadFn    func(ctx context.Context, id string) error
	markAllReadFn func(ctx context.Context) (int64, error)
	countUnreadFn func(ctx context.Context) (int64, error)
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if f.createFn != nil {
		return f.createFn(ctx, n)
	}
	return nil
}

func (f *fakeNotificationRepo) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	if f.listFn != nil {
		return f.listFn(ctx, limit)
	}
	return nil, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, id)
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx)
	}
	return 0, nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context) (int64, error) {
	if f.countUnreadFn != nil {
		return f.countUnreadFn(ctx)
	}
	return 0, nil
}

var _ repository.NotificationRepository = (*fakeNotificationRepo)(nil)

type fakeAttendanceRepo struct {
	upsertFn        func(ctx context.Context, a *domain.AttendanceRecord) error
	reportByBatchFn func(ctx context.Context, batchNumber string, from, to *time.Time) ([]domain.StudentAttendance, error)
	rateForDateFn   func(ctx context.Context, date time.Time) (repository.DayRate, error)
}

func (f *fakeAttendanceRepo) Upsert(ctx context.Context, a *domain.AttendanceRecord) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, a)
	}
	return nil
}

func (f *fakeAttendanceRepo) ReportByBatch(ctx context.Context, batchNumber string, from, to *time.Time) ([]domain.StudentAttendance, error) {
	if f.reportByBatchFn != nil {
		return f.reportByBatchFn(ctx, batchNumber, from, to)
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) RateForDate(ctx context.Context, date time.Time) (repository.DayRate, error) {
	if f.rateForDateFn != nil {
		return f.rateForDateFn(ctx, date)
	}
	return repository.DayRate{}, nil
}

var _ repository.AttendanceRepository = (*fakeAttendanceRepo)(nil)

type fakePublisher struct {
	publishFn func(ctx context.Context, routingKey string, evt queue.LifecycleEvent) error
	closeFn   func() error
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, evt queue.LifecycleEvent) error {
	if f.publishFn != nil {
		return f.publishFn(ctx, routingKey, evt)
	}
	return nil
}

func (f *fakePublisher) Close() error {
	if f.closeFn != nil {
		return f.closeFn()
	}
	return nil
}

var _ queue.Publisher = (*fakePublisher)(nil)

type fakeSummaryCache struct {
	getFn func(ctx context.Context, key string) (string, bool, error)
	setFn func(ctx context.Context, key string, value string, ttl time.Duration) error
}

func (f *fakeSummaryCache) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getFn != nil {
		return f.getFn(ctx, key)
	}
	return "", false, nil
}

func (f *fakeSummaryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if f.setFn != nil {
		return f.setFn(ctx, key, value, ttl)
	}
	return nil
}

var _ SummaryCache = (*fakeSummaryCache)(nil)
