package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trackademy/batchline/internal/domain"
	"github.com/trackademy/batchline/internal/observability"
	"github.com/trackademy/batchline/internal/queue"
	"github.com/trackademy/batchline/internal/repository"
	"go.uber.org/zap"
)

const defaultEndingSoonWindowDays = 7

// LifecycleResult summarizes one automation run.
type LifecycleResult struct {
	BatchesCompleted   int
	StudentsCompleted  int64
	EndingSoonNotified int
}

// LifecycleService is the daily batch lifecycle automation: it completes
// batches whose end date has passed, cascades the status change to their
// students, and emits a one-shot warning for batches ending within the
// configured window. Reruns are idempotent: the completed_at and
// ending_soon_notified_at guards keep a second run from mutating anything.
type LifecycleService struct {
	batches          repository.BatchRepository
	notifications    repository.NotificationRepository
	publisher        queue.Publisher
	metrics          *observability.Metrics
	logger           *zap.Logger
	now              func() time.Time
	endingSoonWindow int
}

func NewLifecycleService(
	batches repository.BatchRepository,
	notifications repository.NotificationRepository,
	publisher queue.Publisher,
	metrics *observability.Metrics,
	endingSoonWindowDays int,
	logger *zap.Logger,
) (*LifecycleService, error) {
	if batches == nil {
		return nil, fmt.Errorf("batch repository is required")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if endingSoonWindowDays <= 0 {
		endingSoonWindowDays = defaultEndingSoonWindowDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LifecycleService{
		batches:          batches,
		notifications:    notifications,
		publisher:        publisher,
		metrics:          metrics,
		logger:           logger,
		now:              time.Now,
		endingSoonWindow: endingSoonWindowDays,
	}, nil
}

// RunOnce processes every batch once. Per-batch failures are logged and the
// run continues; only a failure to load the batch list aborts the run.
func (s *LifecycleService) RunOnce(ctx context.Context) (LifecycleResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	started := s.now()
	defer func() {
		s.metrics.ObserveAutomationRunDuration(time.Since(started))
	}()

	batches, err := retryOnce(ctx, func() ([]domain.Batch, error) {
		return s.batches.List(ctx)
	})
	if err != nil {
		return LifecycleResult{}, fmt.Errorf("failed to load batches for lifecycle run: %w", err)
	}

	var result LifecycleResult
	today := s.now()

	for i := range batches {
		b := batches[i]
		derived := domain.ComputeBatchStatus(b.StartDate, b.EndDate, today)

		switch {
		case derived == domain.BatchStatusCompleted && b.CompletedAt == nil:
			flipped, won, err := s.completeBatch(ctx, &b, today)
			if err != nil {
				s.logger.Error("failed to complete batch",
					zap.String("batchId", b.ID),
					zap.Error(err),
				)
				continue
			}
			if !won {
				continue
			}
			result.BatchesCompleted++
			result.StudentsCompleted += flipped

		case derived == domain.BatchStatusActive && b.EndingSoonNotifiedAt == nil &&
			domain.DaysUntilEnd(b.EndDate, today) <= s.endingSoonWindow:
			if err := s.notifyEndingSoon(ctx, &b, today); err != nil {
				s.logger.Error("failed to emit ending-soon notification",
					zap.String("batchId", b.ID),
					zap.Error(err),
				)
				continue
			}
			result.EndingSoonNotified++
		}
	}

	s.logger.Info("lifecycle automation run finished",
		zap.Int("batchesCompleted", result.BatchesCompleted),
		zap.Int64("studentsCompleted", result.StudentsCompleted),
		zap.Int("endingSoonNotified", result.EndingSoonNotified),
	)
	return result, nil
}

// completeBatch marks the batch completed and cascades to its students.
// The bool reports whether this run won the completed_at guard.
func (s *LifecycleService) completeBatch(ctx context.Context, b *domain.Batch, today time.Time) (int64, bool, error) {
	flipped, err := s.batches.CompleteWithCascade(ctx, b.ID, today)
	if errors.Is(err, domain.ErrConflict) {
		// Another run got here first; nothing left to do.
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	s.metrics.IncBatchCompleted()
	s.metrics.AddStudentsCascaded("completed", flipped)

	notification := &domain.Notification{
		ID:      uuid.NewString(),
		Kind:    domain.NotificationBatchCompleted,
		Title:   fmt.Sprintf("Batch %s completed", b.ID),
		Message: fmt.Sprintf("%s (%s) ended on %s. %d student(s) marked completed.", b.Name, b.CourseName, b.EndDate.Format("2006-01-02"), flipped),
		BatchID: &b.ID,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		// The batch transition already committed; losing the in-app note
		// is tolerable and logged, not rolled back.
		s.logger.Warn("failed to store completion notification",
			zap.String("batchId", b.ID),
			zap.Error(err),
		)
	} else {
		s.metrics.IncNotificationEmitted(domain.NotificationBatchCompleted.String())
	}

	s.publish(ctx, queue.RouteBatchCompleted, queue.LifecycleEvent{
		Kind:             queue.RouteBatchCompleted,
		BatchID:          b.ID,
		CourseName:       b.CourseName,
		StudentsAffected: flipped,
	})

	s.logger.Info("batch auto-completed",
		zap.String("batchId", b.ID),
		zap.Int64("studentsCompleted", flipped),
	)
	return flipped, true, nil
}

func (s *LifecycleService) notifyEndingSoon(ctx context.Context, b *domain.Batch, today time.Time) error {
	daysLeft := domain.DaysUntilEnd(b.EndDate, today)

	notification := &domain.Notification{
		ID:      uuid.NewString(),
		Kind:    domain.NotificationBatchEndingSoon,
		Title:   fmt.Sprintf("Batch %s ending soon", b.ID),
		Message: fmt.Sprintf("%s (%s) ends in %d day(s) on %s.", b.Name, b.CourseName, daysLeft, b.EndDate.Format("2006-01-02")),
		BatchID: &b.ID,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return err
	}
	s.metrics.IncNotificationEmitted(domain.NotificationBatchEndingSoon.String())

	if err := s.batches.MarkEndingSoonNotified(ctx, b.ID, today); err != nil {
		return err
	}

	s.publish(ctx, queue.RouteBatchEndingSoon, queue.LifecycleEvent{
		Kind:       queue.RouteBatchEndingSoon,
		BatchID:    b.ID,
		CourseName: b.CourseName,
	})

	s.logger.Info("ending-soon notification emitted",
		zap.String("batchId", b.ID),
		zap.Int("daysLeft", daysLeft),
	)
	return nil
}

func (s *LifecycleService) publish(ctx context.Context, routingKey string, evt queue.LifecycleEvent) {
	if s.publisher == nil {
		return
	}
	evt.EventID = newEventID()
	evt.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, routingKey, evt); err != nil {
		s.logger.Warn("failed to publish lifecycle event",
			zap.String("routingKey", routingKey),
			zap.String("batchId", evt.BatchID),
			zap.Error(err),
		)
	}
}

func newEventID() string {
	return uuid.NewString()
}
