package service

import (
	"context"
	"errors"
	"testing"

	"github.com/trackademy/batchline/internal/domain"
	"go.uber.org/zap"
)

func newTestStudentService(t *testing.T, students *fakeStudentRepo, batches *fakeBatchRepo) *StudentService {
	t.Helper()

	svc, err := NewStudentService(students, batches, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStudentService() error = %v", err)
	}
	return svc
}

func TestStudentCreateRequiresExistingBatch(t *testing.T) {
	t.Parallel()

	batches := &fakeBatchRepo{
		existsFn: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}

	svc := newTestStudentService(t, &fakeStudentRepo{}, batches)

	_, err := svc.Create(context.Background(), &domain.Student{
		FullName:    "Priya Sharma",
		Email:       "priya@example.com",
		BatchNumber: "WDB9",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestStudentCreateDefaultsToActive(t *testing.T) {
	t.Parallel()

	var created *domain.Student
	students := &fakeStudentRepo{
		createFn: func(ctx context.Context, s *domain.Student) error {
			created = s
			return nil
		},
	}
	batches := &fakeBatchRepo{
		existsFn: func(ctx context.Context, id string) (bool, error) {
			return true, nil
		},
	}

	svc := newTestStudentService(t, students, batches)

	student, err := svc.Create(context.Background(), &domain.Student{
		FullName:    "Priya Sharma",
		Email:       "priya@example.com",
		BatchNumber: "WDB1",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created == nil || created.ID == "" {
		t.Fatal("expected student to be stored with a generated id")
	}
	if student.Status != domain.StudentStatusActive {
		t.Fatalf("status = %s, want ACTIVE", student.Status)
	}
}

func TestStudentResolveBatchReportsDanglingReference(t *testing.T) {
	t.Parallel()

	batches := &fakeBatchRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Batch, error) {
			return nil, domain.ErrNotFound
		},
	}

	svc := newTestStudentService(t, &fakeStudentRepo{}, batches)

	_, err := svc.ResolveBatch(context.Background(), &domain.Student{
		ID:          "stu-1",
		BatchNumber: "WDB1",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
