package domain

import (
	"fmt"
	"strings"
	"time"
)

// AttendanceRecord marks one student present or absent on one day.
// One record per student per day; marking again overwrites.
type AttendanceRecord struct {
	ID          string
	StudentID   string
	BatchNumber string
	Date        time.Time
	Present     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *AttendanceRecord) Validate() error {
	if strings.TrimSpace(a.StudentID) == "" {
		return fmt.Errorf("%w: student id is required", ErrValidation)
	}
	if strings.TrimSpace(a.BatchNumber) == "" {
		return fmt.Errorf("%w: batch number is required", ErrValidation)
	}
	if a.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	return nil
}

// StudentAttendance is one row of a per-batch attendance report.
type StudentAttendance struct {
	StudentID   string
	StudentName string
	TotalDays   int
	PresentDays int
}

// Percentage returns attendance as a 0-100 value, 0 for empty windows.
func (s StudentAttendance) Percentage() float64 {
	if s.TotalDays == 0 {
		return 0
	}
	return float64(s.PresentDays) * 100 / float64(s.TotalDays)
}
