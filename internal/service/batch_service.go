package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trackademy/batchline/internal/domain"
	"github.com/trackademy/batchline/internal/observability"
	"github.com/trackademy/batchline/internal/queue"
	"github.com/trackademy/batchline/internal/repository"
	"go.uber.org/zap"
)

// maxIDProbes bounds the duplicate-id probe loop during batch creation.
const maxIDProbes = 1000

type BatchService struct {
	batches   repository.BatchRepository
	students  repository.StudentRepository
	courses   repository.CourseRepository
	publisher queue.Publisher
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewBatchService(
	batches repository.BatchRepository,
	students repository.StudentRepository,
	courses repository.CourseRepository,
	publisher queue.Publisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*BatchService, error) {
	if batches == nil {
		return nil, fmt.Errorf("batch repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BatchService{
		batches:   batches,
		students:  students,
		courses:   courses,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Create validates the batch, generates its id from the course prefix and
// the per-course-per-year sequence, and persists it. A batch whose dates
// place it already Completed is accepted, not rejected.
func (s *BatchService) Create(ctx context.Context, b *domain.Batch) (*domain.Batch, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b == nil {
		return nil, fmt.Errorf("%w: batch is required", domain.ErrValidation)
	}

	b.CourseName = strings.TrimSpace(b.CourseName)
	b.Name = strings.TrimSpace(b.Name)
	b.Trainer = strings.TrimSpace(b.Trainer)

	if err := b.Validate(); err != nil {
		return nil, err
	}

	id, err := s.generateBatchID(ctx, b)
	if err != nil {
		return nil, err
	}
	b.ID = id
	if b.Name == "" {
		b.Name = id
	}

	b.EnrolledCount = 0
	b.CompletedAt = nil
	b.EndingSoonNotifiedAt = nil
	b.DeriveStatus(s.now())

	if err := s.batches.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("batch created",
		zap.String("batchId", b.ID),
		zap.String("course", b.CourseName),
		zap.String("status", b.Status.String()),
	)
	return b, nil
}

func (s *BatchService) Get(ctx context.Context, id string) (*domain.Batch, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: batch id is required", domain.ErrValidation)
	}

	batch, err := retryOnce(ctx, func() (*domain.Batch, error) {
		return s.batches.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	batch.DeriveStatus(s.now())
	return batch, nil
}

// List returns every batch with status freshly derived from dates and the
// enrolled count taken from the live student rows. Stored status values
// are never trusted.
func (s *BatchService) List(ctx context.Context) ([]domain.Batch, error) {
	batches, err := retryOnce(ctx, func() ([]domain.Batch, error) {
		return s.batches.List(ctx)
	})
	if err != nil {
		return nil, err
	}

	today := s.now()
	for i := range batches {
		batches[i].DeriveStatus(today)
	}
	return batches, nil
}

func (s *BatchService) ListByStatus(ctx context.Context, status domain.BatchStatus) ([]domain.Batch, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid batch status %q", domain.ErrValidation, status)
	}

	batches, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.Batch, 0, len(batches))
	for _, b := range batches {
		if b.Status == status {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// Update merges the patch into the stored batch. When dates change, the
// combined range is validated before the write.
func (s *BatchService) Update(ctx context.Context, id string, patch domain.BatchPatch) (*domain.Batch, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: batch id is required", domain.ErrValidation)
	}

	if patch.Capacity != nil && *patch.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity must not be negative", domain.ErrValidation)
	}

	if patch.StartDate != nil || patch.EndDate != nil {
		current, err := s.batches.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		start := current.StartDate
		end := current.EndDate
		if patch.StartDate != nil {
			start = *patch.StartDate
		}
		if patch.EndDate != nil {
			end = *patch.EndDate
		}
		if end.Before(start) {
			return nil, fmt.Errorf("%w: end date is before start date", domain.ErrValidation)
		}
	}

	updated, err := s.batches.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	updated.DeriveStatus(s.now())
	return updated, nil
}

// Delete removes the batch only. Student records keep their batch number;
// the dangling reference is resolved lazily wherever students are listed.
func (s *BatchService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: batch id is required", domain.ErrValidation)
	}
	if err := s.batches.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("batch deleted", zap.String("batchId", id))
	return nil
}

// Reactivate restores a completed batch to Active and flips its Completed
// students back to Active. Safe to call repeatedly.
func (s *BatchService) Reactivate(ctx context.Context, id string) (*domain.Batch, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: batch id is required", domain.ErrValidation)
	}

	studentsFlipped, err := s.batches.ReactivateWithCascade(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.IncBatchReactivated()
	s.metrics.AddStudentsCascaded("reactivated", studentsFlipped)
	s.logger.Info("batch reactivated",
		zap.String("batchId", id),
		zap.Int64("studentsReactivated", studentsFlipped),
	)

	batch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, queue.RouteBatchReactivated, queue.LifecycleEvent{
		Kind:             queue.RouteBatchReactivated,
		BatchID:          batch.ID,
		CourseName:       batch.CourseName,
		StudentsAffected: studentsFlipped,
	})

	return batch, nil
}

// generateBatchID builds prefix + "B" + sequence, where the prefix comes
// from the registered course when one exists and the name heuristic
// otherwise, and the sequence counts batches of the same normalized course
// within the calendar year of the new batch's start date. Collisions bump
// the sequence until an unused id is found.
func (s *BatchService) generateBatchID(ctx context.Context, b *domain.Batch) (string, error) {
	prefix := domain.CoursePrefix(b.CourseName)
	if s.courses != nil {
		course, err := s.courses.FindByName(ctx, b.CourseName)
		switch {
		case err == nil:
			prefix = course.Prefix
			b.CourseID = &course.ID
		case errors.Is(err, domain.ErrNotFound):
			// Free-text course name; the heuristic prefix stands.
		default:
			return "", err
		}
	}

	normalized := domain.NormalizeCourseName(b.CourseName)
	year := b.StartDate.Year()

	count, err := s.batches.CountByCourseYear(ctx, normalized, year)
	if err != nil {
		return "", err
	}

	seq := count + 1
	for probes := 0; probes < maxIDProbes; probes++ {
		id := fmt.Sprintf("%sB%d", prefix, seq)
		exists, err := s.batches.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
		seq++
	}

	return "", fmt.Errorf("%w: could not allocate a batch id for course %q", domain.ErrConflict, b.CourseName)
}

func (s *BatchService) publishEvent(ctx context.Context, routingKey string, evt queue.LifecycleEvent) {
	if s.publisher == nil {
		return
	}
	evt.EventID = newEventID()
	evt.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, routingKey, evt); err != nil {
		// Events are best-effort; the in-app notification store is the
		// authoritative sink.
		s.logger.Warn("failed to publish lifecycle event",
			zap.String("routingKey", routingKey),
			zap.String("batchId", evt.BatchID),
			zap.Error(err),
		)
	}
}

// retryOnce retries a read exactly once when the backing store reports a
// transient storage or decode failure, then surfaces the error.
func retryOnce[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	value, err := fn()
	if err == nil {
		return value, nil
	}
	if ctx != nil && ctx.Err() != nil {
		return value, err
	}
	if errors.Is(err, domain.ErrStorage) || errors.Is(err, domain.ErrDecode) {
		return fn()
	}
	return value, err
}
