package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trackademy/batchline/internal/domain"
	"github.com/trackademy/batchline/internal/repository"
	"go.uber.org/zap"
)

const dashboardSummaryKey = "dashboard:summary"

// SummaryCache keeps the dashboard summary out of Postgres on hot reads.
// The redis-backed implementation lives in internal/infra/redis.
type SummaryCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// DashboardSummary is the aggregate snapshot rendered on the landing page.
type DashboardSummary struct {
	TotalBatches        int       `json:"totalBatches"`
	ActiveBatches       int       `json:"activeBatches"`
	UpcomingBatches     int       `json:"upcomingBatches"`
	CompletedBatches    int       `json:"completedBatches"`
	TotalStudents       int64     `json:"totalStudents"`
	NewEnquiries        int       `json:"newEnquiries"`
	UnreadNotifications int64     `json:"unreadNotifications"`
	AttendanceRateToday float64   `json:"attendanceRateToday"`
	GeneratedAt         time.Time `json:"generatedAt"`
}

type AttendanceService struct {
	attendance    repository.AttendanceRepository
	batches       repository.BatchRepository
	students      repository.StudentRepository
	enquiries     repository.EnquiryRepository
	notifications repository.NotificationRepository
	cache         SummaryCache
	cacheTTL      time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

func NewAttendanceService(
	attendance repository.AttendanceRepository,
	batches repository.BatchRepository,
	students repository.StudentRepository,
	enquiries repository.EnquiryRepository,
	notifications repository.NotificationRepository,
	cache SummaryCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) (*AttendanceService, error) {
	if attendance == nil {
		return nil, fmt.Errorf("attendance repository is required")
	}
	if batches == nil {
		return nil, fmt.Errorf("batch repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return &AttendanceService{
		attendance:    attendance,
		batches:       batches,
		students:      students,
		enquiries:     enquiries,
		notifications: notifications,
		cache:         cache,
		cacheTTL:      cacheTTL,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// Mark records one student's attendance for one day. Marking the same
// student and day again overwrites the earlier mark.
func (s *AttendanceService) Mark(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: attendance record is required", domain.ErrValidation)
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	record.Date = record.Date.Truncate(24 * time.Hour)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := s.attendance.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ReportForBatch aggregates per-student attendance for a batch over an
// optional date window.
func (s *AttendanceService) ReportForBatch(ctx context.Context, batchNumber string, from, to *time.Time) ([]domain.StudentAttendance, error) {
	batchNumber = strings.TrimSpace(batchNumber)
	if batchNumber == "" {
		return nil, fmt.Errorf("%w: batch number is required", domain.ErrValidation)
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("%w: report window end precedes start", domain.ErrValidation)
	}
	return retryOnce(ctx, func() ([]domain.StudentAttendance, error) {
		return s.attendance.ReportByBatch(ctx, batchNumber, from, to)
	})
}

// Summary returns the dashboard snapshot, served from cache when fresh.
// Cache failures degrade to a direct computation rather than an error.
func (s *AttendanceService) Summary(ctx context.Context) (*DashboardSummary, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, dashboardSummaryKey)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		} else if ok {
			var summary DashboardSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
			s.logger.Warn("discarding malformed dashboard cache entry")
		}
	}

	summary, err := s.computeSummary(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, dashboardSummaryKey, string(payload), s.cacheTTL); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return summary, nil
}

func (s *AttendanceService) computeSummary(ctx context.Context) (*DashboardSummary, error) {
	today := s.now().UTC()
	summary := &DashboardSummary{GeneratedAt: today}

	batches, err := retryOnce(ctx, func() ([]domain.Batch, error) {
		return s.batches.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	summary.TotalBatches = len(batches)
	for i := range batches {
		switch domain.ComputeBatchStatus(batches[i].StartDate, batches[i].EndDate, today) {
		case domain.BatchStatusActive:
			summary.ActiveBatches++
		case domain.BatchStatusUpcoming:
			summary.UpcomingBatches++
		case domain.BatchStatusCompleted:
			summary.CompletedBatches++
		}
	}

	if s.students != nil {
		count, err := s.students.Count(ctx)
		if err != nil {
			return nil, err
		}
		summary.TotalStudents = count
	}

	if s.enquiries != nil {
		status := domain.EnquiryStatusNew
		open, err := s.enquiries.List(ctx, &status)
		if err != nil {
			return nil, err
		}
		summary.NewEnquiries = len(open)
	}

	if s.notifications != nil {
		unread, err := s.notifications.CountUnread(ctx)
		if err != nil {
			return nil, err
		}
		summary.UnreadNotifications = unread
	}

	rate, err := s.attendance.RateForDate(ctx, today.Truncate(24*time.Hour))
	if err != nil {
		return nil, err
	}
	if rate.Total > 0 {
		summary.AttendanceRateToday = float64(rate.Present) * 100 / float64(rate.Total)
	}

	return summary, nil
}
