package domain

import (
	"fmt"
	"strings"
	"time"
)

// BatchStatus represents the lifecycle state of a training batch.
type BatchStatus string

const (
	BatchStatusUpcoming  BatchStatus = "UPCOMING"
	BatchStatusActive    BatchStatus = "ACTIVE"
	BatchStatusCompleted BatchStatus = "COMPLETED"
)

func (s BatchStatus) String() string { return string(s) }

func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusUpcoming, BatchStatusActive, BatchStatusCompleted:
		return true
	}
	return false
}

func ParseBatchStatusFromString(s string) (BatchStatus, error) {
	st := BatchStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid batch status %q", ErrValidation, s)
	}
	return st, nil
}

// ComputeBatchStatus derives a batch status from its date range. Stored
// status fields are only a cache of this derivation and are never trusted
// on read. Zero dates default to Upcoming. Dates are compared at day
// granularity: a batch is Active on both its start and end day.
func ComputeBatchStatus(start, end, today time.Time) BatchStatus {
	if start.IsZero() || end.IsZero() {
		return BatchStatusUpcoming
	}

	day := truncateToDay(today)
	if day.Before(truncateToDay(start)) {
		return BatchStatusUpcoming
	}
	if day.After(truncateToDay(end)) {
		return BatchStatusCompleted
	}
	return BatchStatusActive
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntilEnd reports whole days from today until the batch end day.
// Negative when the end day has passed.
func DaysUntilEnd(end, today time.Time) int {
	return int(truncateToDay(end).Sub(truncateToDay(today)).Hours() / 24)
}

// Batch is one cohort of students enrolled in a course over a date range.
// ID carries the course prefix and a per-course-per-year sequence, e.g. WDB1.
type Batch struct {
	ID                   string
	CourseID             *string
	CourseName           string
	Name                 string
	Trainer              string
	Description          string
	Capacity             int
	EnrolledCount        int
	StartDate            time.Time
	EndDate              time.Time
	Status               BatchStatus
	CompletedAt          *time.Time
	EndingSoonNotifiedAt *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (b *Batch) Validate() error {
	if strings.TrimSpace(b.CourseName) == "" {
		return fmt.Errorf("%w: course name is required", ErrValidation)
	}
	if b.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrValidation)
	}
	if b.EndDate.IsZero() {
		return fmt.Errorf("%w: end date is required", ErrValidation)
	}
	if b.EndDate.Before(b.StartDate) {
		return fmt.Errorf("%w: end date is before start date", ErrValidation)
	}
	if b.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", ErrValidation)
	}
	return nil
}

// DeriveStatus overwrites the cached status with the value computed from
// the batch's own dates.
func (b *Batch) DeriveStatus(today time.Time) {
	b.Status = ComputeBatchStatus(b.StartDate, b.EndDate, today)
}

// BatchPatch carries a partial update; nil fields are left untouched.
type BatchPatch struct {
	Name        *string
	Trainer     *string
	Description *string
	Capacity    *int
	StartDate   *time.Time
	EndDate     *time.Time
}
