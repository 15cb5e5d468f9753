package domain

import (
	"fmt"
	"strings"
	"time"
)

// StudentStatus mirrors the lifecycle state of the student's batch.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusCompleted StudentStatus = "COMPLETED"
)

func (s StudentStatus) String() string { return string(s) }

func (s StudentStatus) IsValid() bool {
	switch s {
	case StudentStatusActive, StudentStatusCompleted:
		return true
	}
	return false
}

func ParseStudentStatusFromString(s string) (StudentStatus, error) {
	st := StudentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid student status %q", ErrValidation, s)
	}
	return st, nil
}

// Student is an enrolled student. BatchNumber references a batch by its id
// string. The reference is deliberately loose: deleting a batch leaves the
// value dangling, and callers resolve it lazily.
type Student struct {
	ID          string
	FullName    string
	Email       string
	Phone       string
	BatchNumber string
	Status      StudentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s *Student) Validate() error {
	if strings.TrimSpace(s.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if strings.TrimSpace(s.Email) == "" && strings.TrimSpace(s.Phone) == "" {
		return fmt.Errorf("%w: email or phone is required", ErrValidation)
	}
	if s.Status != "" && !s.Status.IsValid() {
		return fmt.Errorf("%w: invalid student status %q", ErrValidation, s.Status)
	}
	return nil
}
