package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trackademy/batchline/internal/domain"
	"github.com/trackademy/batchline/internal/observability"
	"github.com/trackademy/batchline/internal/queue"
	"github.com/trackademy/batchline/internal/repository"
	"go.uber.org/zap"
)

type EnquiryService struct {
	enquiries     repository.EnquiryRepository
	notifications repository.NotificationRepository
	publisher     queue.Publisher
	metrics       *observability.Metrics
	logger        *zap.Logger
}

func NewEnquiryService(
	enquiries repository.EnquiryRepository,
	notifications repository.NotificationRepository,
	publisher queue.Publisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*EnquiryService, error) {
	if enquiries == nil {
		return nil, fmt.Errorf("enquiry repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EnquiryService{
		enquiries:     enquiries,
		notifications: notifications,
		publisher:     publisher,
		metrics:       metrics,
		logger:        logger,
	}, nil
}

// Ingest upserts a third-party form submission. Matching is best-effort:
// email first, then phone; a match merges the non-empty incoming fields
// into the existing enquiry instead of creating a duplicate. Returns the
// stored enquiry and whether it was newly created.
func (s *EnquiryService) Ingest(ctx context.Context, incoming *domain.Enquiry) (*domain.Enquiry, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if incoming == nil {
		return nil, false, fmt.Errorf("%w: enquiry is required", domain.ErrValidation)
	}

	incoming.FullName = strings.TrimSpace(incoming.FullName)
	incoming.Email = strings.TrimSpace(incoming.Email)
	incoming.Phone = strings.TrimSpace(incoming.Phone)
	incoming.CourseName = strings.TrimSpace(incoming.CourseName)
	incoming.Source = strings.TrimSpace(incoming.Source)
	if incoming.Status == "" {
		incoming.Status = domain.EnquiryStatusNew
	}

	if err := incoming.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.match(ctx, incoming)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	if existing != nil {
		merge(existing, incoming)
		if err := s.enquiries.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		s.metrics.IncWebhookEnquiry("matched")
		s.logger.Info("webhook enquiry matched existing lead",
			zap.String("enquiryId", existing.ID),
			zap.String("source", incoming.Source),
		)
		return existing, false, nil
	}

	incoming.ID = uuid.NewString()
	if err := s.enquiries.Create(ctx, incoming); err != nil {
		return nil, false, err
	}
	s.metrics.IncWebhookEnquiry("created")

	s.emitReceivedNotification(ctx, incoming)
	s.publishReceived(ctx, incoming)

	s.logger.Info("webhook enquiry created",
		zap.String("enquiryId", incoming.ID),
		zap.String("source", incoming.Source),
	)
	return incoming, true, nil
}

func (s *EnquiryService) Create(ctx context.Context, e *domain.Enquiry) (*domain.Enquiry, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enquiry is required", domain.ErrValidation)
	}

	e.FullName = strings.TrimSpace(e.FullName)
	if e.Status == "" {
		e.Status = domain.EnquiryStatusNew
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	e.ID = uuid.NewString()
	if err := s.enquiries.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EnquiryService) Get(ctx context.Context, id string) (*domain.Enquiry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: enquiry id is required", domain.ErrValidation)
	}
	return s.enquiries.GetByID(ctx, id)
}

func (s *EnquiryService) List(ctx context.Context, status *domain.EnquiryStatus) ([]domain.Enquiry, error) {
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid enquiry status %q", domain.ErrValidation, *status)
	}
	return retryOnce(ctx, func() ([]domain.Enquiry, error) {
		return s.enquiries.List(ctx, status)
	})
}

func (s *EnquiryService) Update(ctx context.Context, e *domain.Enquiry) error {
	if e == nil || strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: enquiry id is required", domain.ErrValidation)
	}
	if err := e.Validate(); err != nil {
		return err
	}
	return s.enquiries.Update(ctx, e)
}

func (s *EnquiryService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: enquiry id is required", domain.ErrValidation)
	}
	return s.enquiries.Delete(ctx, id)
}

func (s *EnquiryService) match(ctx context.Context, incoming *domain.Enquiry) (*domain.Enquiry, error) {
	if email := domain.NormalizeEmail(incoming.Email); email != "" {
		existing, err := s.enquiries.FindByEmail(ctx, email)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if phone := domain.NormalizePhone(incoming.Phone); phone != "" {
		return s.enquiries.FindByPhone(ctx, phone)
	}
	return nil, domain.ErrNotFound
}

// merge overwrites the existing enquiry's fields with non-empty incoming
// values; notes accumulate rather than replace.
func merge(existing, incoming *domain.Enquiry) {
	if incoming.FullName != "" {
		existing.FullName = incoming.FullName
	}
	if incoming.Email != "" {
		existing.Email = incoming.Email
	}
	if incoming.Phone != "" {
		existing.Phone = incoming.Phone
	}
	if incoming.CourseName != "" {
		existing.CourseName = incoming.CourseName
	}
	if incoming.Source != "" {
		existing.Source = incoming.Source
	}
	if incoming.Notes != "" {
		if existing.Notes != "" {
			existing.Notes = existing.Notes + "\n" + incoming.Notes
		} else {
			existing.Notes = incoming.Notes
		}
	}
}

func (s *EnquiryService) emitReceivedNotification(ctx context.Context, e *domain.Enquiry) {
	if s.notifications == nil {
		return
	}

	notification := &domain.Notification{
		ID:      uuid.NewString(),
		Kind:    domain.NotificationEnquiryReceived,
		Title:   "New enquiry received",
		Message: fmt.Sprintf("%s enquired about %s via %s.", e.FullName, orUnknown(e.CourseName), orUnknown(e.Source)),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to store enquiry notification",
			zap.String("enquiryId", e.ID),
			zap.Error(err),
		)
		return
	}
	s.metrics.IncNotificationEmitted(domain.NotificationEnquiryReceived.String())
}

func (s *EnquiryService) publishReceived(ctx context.Context, e *domain.Enquiry) {
	if s.publisher == nil {
		return
	}
	evt := queue.LifecycleEvent{
		EventID:    newEventID(),
		Kind:       queue.RouteEnquiryReceived,
		EnquiryID:  e.ID,
		CourseName: e.CourseName,
		OccurredAt: e.CreatedAt,
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if err := s.publisher.Publish(ctx, queue.RouteEnquiryReceived, evt); err != nil {
		s.logger.Warn("failed to publish enquiry event",
			zap.String("enquiryId", e.ID),
			zap.Error(err),
		)
	}
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown"
	}
	return v
}
