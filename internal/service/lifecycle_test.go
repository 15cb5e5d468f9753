package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trackademy/batchline/internal/domain"
	"github.com/trackademy/batchline/internal/queue"
	"go.uber.org/zap"
)

func newTestLifecycleService(t *testing.T, batches *fakeBatchRepo, notifications *fakeNotificationRepo, publisher *fakePublisher, window int) *LifecycleService {
	t.Helper()

	var pub queue.Publisher
	if publisher != nil {
		pub = publisher
	}
	svc, err := NewLifecycleService(batches, notifications, pub, nil, window, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLifecycleService() error = %v", err)
	}
	return svc
}

func TestLifecycleRunOnceCompletesPastBatchesAndCascades(t *testing.T) {
	t.Parallel()

	now := date(2025, time.July, 10)
	completed := make([]string, 0, 1)
	repo := &fakeBatchRepo{
		listFn: func(ctx context.Context) ([]domain.Batch, error) {
			return []domain.Batch{
				{ID: "WDB1", Name: "WDB1", CourseName: "Web Development", StartDate: date(2025, time.January, 1), EndDate: date(2025, time.June, 30)},
				{ID: "WDB2", Name: "WDB2", CourseName: "Web Development", StartDate: date(2025, time.May, 1), EndDate: date(2025, time.December, 31)},
			}, nil
		},
		completeWithCascadeFn: func(ctx context.Context, id string, completedAt time.Time) (int64, error) {
			completed = append(completed, id)
			return 8, nil
		},
	}

	var note *domain.Notification
	notifications := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *domain.Notification) error {
			note = n
			return nil
		},
	}

	var published *queue.LifecycleEvent
	publisher := &fakePublisher{
		publishFn: func(ctx context.Context, routingKey string, evt queue.LifecycleEvent) error {
			if routingKey != queue.RouteBatchCompleted {
				t.Fatalf("routing key = %q, want %q", routingKey, queue.RouteBatchCompleted)
			}
			published = &evt
			return nil
		},
	}

	svc := newTestLifecycleService(t, repo, notifications, publisher, 7)
	svc.now = func() time.Time { return now }

	result, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if len(completed) != 1 || completed[0] != "WDB1" {
		t.Fatalf("completed = %v, want [WDB1]", completed)
	}
	if result.BatchesCompleted != 1 {
		t.Fatalf("batches completed = %d, want 1", result.BatchesCompleted)
	}
	if result.StudentsCompleted != 8 {
		t.Fatalf("students completed = %d, want 8", result.StudentsCompleted)
	}
	if note == nil || note.Kind != domain.NotificationBatchCompleted {
		t.Fatalf("notification = %+v, want BATCH_COMPLETED", note)
	}
	if published == nil || published.StudentsAffected != 8 {
		t.Fatalf("published = %+v, want event with 8 students", published)
	}
}

func TestLifecycleRunOnceSecondRunIsNoOp(t *testing.T) {
	t.Parallel()

	now := date(2025, time.July, 10)
	completedAt := date(2025, time.July, 1)
	notifiedAt := date(2025, time.July, 5)
	repo := &fakeBatchRepo{
		listFn: func(ctx context.Context) ([]domain.Batch, error) {
			return []domain.Batch{
				{ID: "WDB1", StartDate: date(2025, time.January, 1), EndDate: date(2025, time.June, 30), CompletedAt: &completedAt},
				{ID: "WDB2", StartDate: date(2025, time.May, 1), EndDate: date(2025, time.July, 14), EndingSoonNotifiedAt: &notifiedAt},
			}, nil
		},
		completeWithCascadeFn: func(ctx context.Context, id string, completedAt time.Time) (int64, error) {
			t.Fatalf("CompleteWithCascade should not run for already-completed batch %s", id)
			return 0, nil
		},
		markEndingSoonFn: func(ctx context.Context, id string, at time.Time) error {
			t.Fatalf("MarkEndingSoonNotified should not run twice for batch %s", id)
			return nil
		},
	}
	notifications := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *domain.Notification) error {
			t.Fatalf("no notification expected, got %s", n.Kind)
			return nil
		},
	}

	svc := newTestLifecycleService(t, repo, notifications, nil, 7)
	svc.now = func() time.Time { return now }

	result, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if result != (LifecycleResult{}) {
		t.Fatalf("result = %+v, want zero", result)
	}
}

func TestLifecycleRunOnceEmitsEndingSoonInsideWindow(t *testing.T) {
	t.Parallel()

	now := date(2025, time.June, 25)
	marked := ""
	repo := &fakeBatchRepo{
		listFn: func(ctx context.Context) ([]domain.Batch, error) {
			return []domain.Batch{
				// Ends in 5 days, inside the 7-day window.
				{ID: "WDB1", Name: "WDB1", CourseName: "Web Development", StartDate: date(2025, time.January, 1), EndDate: date(2025, time.June, 30)},
				// Ends in 20 days, outside the window.
				{ID: "DSB1", Name: "DSB1", CourseName: "Data Science", StartDate: date(2025, time.February, 1), EndDate: date(2025, time.July, 15)},
			}, nil
		},
		markEndingSoonFn: func(ctx context.Context, id string, at time.Time) error {
			marked = id
			return nil
		},
	}

	var note *domain.Notification
	notifications := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *domain.Notification) error {
			note = n
			return nil
		},
	}

	svc := newTestLifecycleService(t, repo, notifications, nil, 7)
	svc.now = func() time.Time { return now }

	result, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if result.EndingSoonNotified != 1 {
		t.Fatalf("ending soon notified = %d, want 1", result.EndingSoonNotified)
	}
	if marked != "WDB1" {
		t.Fatalf("marked = %q, want WDB1", marked)
	}
	if note == nil || note.Kind != domain.NotificationBatchEndingSoon {
		t.Fatalf("notification = %+v, want BATCH_ENDING_SOON", note)
	}
}

func TestLifecycleRunOnceTreatsConflictAsAlreadyDone(t *testing.T) {
	t.Parallel()

	now := date(2025, time.July, 10)
	repo := &fakeBatchRepo{
		listFn: func(ctx context.Context) ([]domain.Batch, error) {
			return []domain.Batch{
				{ID: "WDB1", StartDate: date(2025, time.January, 1), EndDate: date(2025, time.June, 30)},
			}, nil
		},
		completeWithCascadeFn: func(ctx context.Context, id string, completedAt time.Time) (int64, error) {
			// A concurrent run won the guard.
			return 0, domain.ErrConflict
		},
	}
	notifications := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *domain.Notification) error {
			t.Fatal("no notification expected when the guard loses")
			return nil
		},
	}

	svc := newTestLifecycleService(t, repo, notifications, nil, 7)
	svc.now = func() time.Time { return now }

	result, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if result.BatchesCompleted != 0 {
		t.Fatalf("batches completed = %d, want 0", result.BatchesCompleted)
	}
}

func TestLifecycleRunOnceContinuesPastPerBatchFailure(t *testing.T) {
	t.Parallel()

	now := date(2025, time.July, 10)
	repo := &fakeBatchRepo{
		listFn: func(ctx context.Context) ([]domain.Batch, error) {
			return []domain.Batch{
				{ID: "WDB1", StartDate: date(2025, time.January, 1), EndDate: date(2025, time.June, 30)},
				{ID: "DSB1", Name: "DSB1", CourseName: "Data Science", StartDate: date(2025, time.February, 1), EndDate: date(2025, time.May, 31)},
			}, nil
		},
		completeWithCascadeFn: func(ctx context.Context, id string, completedAt time.Time) (int64, error) {
			if id == "WDB1" {
				return 0, errors.New("deadlock detected")
			}
			return 3, nil
		},
	}

	svc := newTestLifecycleService(t, repo, &fakeNotificationRepo{}, nil, 7)
	svc.now = func() time.Time { return now }

	result, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if result.BatchesCompleted != 1 {
		t.Fatalf("batches completed = %d, want 1", result.BatchesCompleted)
	}
	if result.StudentsCompleted != 3 {
		t.Fatalf("students completed = %d, want 3", result.StudentsCompleted)
	}
}

func TestLifecycleRunOnceNotificationFailureDoesNotAbortCompletion(t *testing.T) {
	t.Parallel()

	now := date(2025, time.July, 10)
	repo := &fakeBatchRepo{
		listFn: func(ctx context.Context) ([]domain.Batch, error) {
			return []domain.Batch{
				{ID: "WDB1", Name: "WDB1", CourseName: "Web Development", StartDate: date(2025, time.January, 1), EndDate: date(2025, time.June, 30)},
			}, nil
		},
		completeWithCascadeFn: func(ctx context.Context, id string, completedAt time.Time) (int64, error) {
			return 5, nil
		},
	}
	notifications := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *domain.Notification) error {
			return errors.New("disk full")
		},
	}

	svc := newTestLifecycleService(t, repo, notifications, nil, 7)
	svc.now = func() time.Time { return now }

	result, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if result.BatchesCompleted != 1 {
		t.Fatalf("batches completed = %d, want 1", result.BatchesCompleted)
	}
}

func TestLifecycleSchedulerRunsImmediatelyAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	ran := make(chan struct{}, 1)
	repo := &fakeBatchRepo{
		listFn: func(ctx context.Context) ([]domain.Batch, error) {
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil, nil
		},
	}

	lifecycle := newTestLifecycleService(t, repo, &fakeNotificationRepo{}, nil, 7)
	scheduler, err := NewLifecycleScheduler(lifecycle, time.Hour, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLifecycleScheduler() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- scheduler.Start(ctx)
	}()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate lifecycle run")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
