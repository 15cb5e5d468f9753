package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trackademy/batchline/internal/domain"
	"gorm.io/gorm"
)

// BatchModel is the persistence model for the batches table.
// NormalizedCourse is written on every insert so the per-course-per-year
// sequence query does not have to re-apply the name heuristic in SQL.
type BatchModel struct {
	ID                   string             `gorm:"type:varchar(20);primaryKey"`
	CourseID             *string            `gorm:"type:uuid"`
	CourseName           string             `gorm:"type:varchar(255);not null"`
	NormalizedCourse     string             `gorm:"type:varchar(255);not null;index:idx_batches_course_year,priority:1"`
	Name                 string             `gorm:"type:varchar(255);not null"`
	Trainer              string             `gorm:"type:varchar(255)"`
	Description          string             `gorm:"type:text"`
	Capacity             int                `gorm:"not null;default:0"`
	StartDate            time.Time          `gorm:"not null;index:idx_batches_course_year,priority:2"`
	EndDate              time.Time          `gorm:"not null"`
	Status               domain.BatchStatus `gorm:"type:varchar(20);not null"`
	CompletedAt          *time.Time
	EndingSoonNotifiedAt *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Populated by list/get queries via a correlated count, never stored.
	EnrolledCount int `gorm:"->;-:migration"`
}

func (BatchModel) TableName() string {
	return "batches"
}

// StudentModel is the persistence model for the students table. BatchNumber
// is a loose string reference to batches.id, deliberately without a foreign
// key constraint: deleting a batch leaves the value dangling.
type StudentModel struct {
	ID          string               `gorm:"type:uuid;primaryKey"`
	FullName    string               `gorm:"type:varchar(255);not null"`
	Email       string               `gorm:"type:varchar(255)"`
	Phone       string               `gorm:"type:varchar(32)"`
	BatchNumber string               `gorm:"type:varchar(20);index"`
	Status      domain.StudentStatus `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (StudentModel) TableName() string {
	return "students"
}

// CourseModel is the persistence model for the courses table.
type CourseModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Prefix      string `gorm:"type:varchar(2);not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CourseModel) TableName() string {
	return "courses"
}

// EnquiryModel is the persistence model for the enquiries table. The
// normalized contact columns are the webhook upsert match keys.
type EnquiryModel struct {
	ID              string               `gorm:"type:uuid;primaryKey"`
	FullName        string               `gorm:"type:varchar(255);not null"`
	Email           string               `gorm:"type:varchar(255)"`
	NormalizedEmail string               `gorm:"type:varchar(255);index"`
	Phone           string               `gorm:"type:varchar(32)"`
	NormalizedPhone string               `gorm:"type:varchar(32);index"`
	CourseName      string               `gorm:"type:varchar(255)"`
	Source          string               `gorm:"type:varchar(100)"`
	Notes           string               `gorm:"type:text"`
	Status          domain.EnquiryStatus `gorm:"type:varchar(20);not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (EnquiryModel) TableName() string {
	return "enquiries"
}

// NotificationModel is the persistence model for the notifications table.
type NotificationModel struct {
	ID        string                  `gorm:"type:uuid;primaryKey"`
	Kind      domain.NotificationKind `gorm:"type:varchar(30);not null"`
	Title     string                  `gorm:"type:varchar(255);not null"`
	Message   string                  `gorm:"type:text"`
	BatchID   *string                 `gorm:"type:varchar(20)"`
	Read      bool                    `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (NotificationModel) TableName() string {
	return "notifications"
}

// AttendanceModel is the persistence model for attendance_records.
// One row per student per day, enforced by a unique index.
type AttendanceModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	StudentID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_student_date,priority:1"`
	BatchNumber string    `gorm:"type:varchar(20);index"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:idx_attendance_student_date,priority:2"`
	Present     bool      `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AttendanceModel) TableName() string {
	return "attendance_records"
}

func batchModelFromDomain(b *domain.Batch) *BatchModel {
	if b == nil {
		return nil
	}

	return &BatchModel{
		ID:                   b.ID,
		CourseID:             b.CourseID,
		CourseName:           b.CourseName,
		NormalizedCourse:     domain.NormalizeCourseName(b.CourseName),
		Name:                 b.Name,
		Trainer:              b.Trainer,
		Description:          b.Description,
		Capacity:             b.Capacity,
		StartDate:            b.StartDate,
		EndDate:              b.EndDate,
		Status:               b.Status,
		CompletedAt:          b.CompletedAt,
		EndingSoonNotifiedAt: b.EndingSoonNotifiedAt,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}

func batchModelToDomain(m *BatchModel) *domain.Batch {
	if m == nil {
		return nil
	}

	return &domain.Batch{
		ID:                   m.ID,
		CourseID:             m.CourseID,
		CourseName:           m.CourseName,
		Name:                 m.Name,
		Trainer:              m.Trainer,
		Description:          m.Description,
		Capacity:             m.Capacity,
		EnrolledCount:        m.EnrolledCount,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		Status:               m.Status,
		CompletedAt:          m.CompletedAt,
		EndingSoonNotifiedAt: m.EndingSoonNotifiedAt,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func studentModelFromDomain(s *domain.Student) *StudentModel {
	if s == nil {
		return nil
	}

	return &StudentModel{
		ID:          s.ID,
		FullName:    s.FullName,
		Email:       s.Email,
		Phone:       s.Phone,
		BatchNumber: s.BatchNumber,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func studentModelToDomain(m *StudentModel) *domain.Student {
	if m == nil {
		return nil
	}

	return &domain.Student{
		ID:          m.ID,
		FullName:    m.FullName,
		Email:       m.Email,
		Phone:       m.Phone,
		BatchNumber: m.BatchNumber,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func courseModelFromDomain(c *domain.Course) *CourseModel {
	if c == nil {
		return nil
	}

	return &CourseModel{
		ID:          c.ID,
		Name:        c.Name,
		Prefix:      c.Prefix,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func courseModelToDomain(m *CourseModel) *domain.Course {
	if m == nil {
		return nil
	}

	return &domain.Course{
		ID:          m.ID,
		Name:        m.Name,
		Prefix:      m.Prefix,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func enquiryModelFromDomain(e *domain.Enquiry) *EnquiryModel {
	if e == nil {
		return nil
	}

	return &EnquiryModel{
		ID:              e.ID,
		FullName:        e.FullName,
		Email:           e.Email,
		NormalizedEmail: domain.NormalizeEmail(e.Email),
		Phone:           e.Phone,
		NormalizedPhone: domain.NormalizePhone(e.Phone),
		CourseName:      e.CourseName,
		Source:          e.Source,
		Notes:           e.Notes,
		Status:          e.Status,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func enquiryModelToDomain(m *EnquiryModel) *domain.Enquiry {
	if m == nil {
		return nil
	}

	return &domain.Enquiry{
		ID:         m.ID,
		FullName:   m.FullName,
		Email:      m.Email,
		Phone:      m.Phone,
		CourseName: m.CourseName,
		Source:     m.Source,
		Notes:      m.Notes,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func notificationModelFromDomain(n *domain.Notification) *NotificationModel {
	if n == nil {
		return nil
	}

	return &NotificationModel{
		ID:        n.ID,
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		BatchID:   n.BatchID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func notificationModelToDomain(m *NotificationModel) *domain.Notification {
	if m == nil {
		return nil
	}

	return &domain.Notification{
		ID:        m.ID,
		Kind:      m.Kind,
		Title:     m.Title,
		Message:   m.Message,
		BatchID:   m.BatchID,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

func attendanceModelFromDomain(a *domain.AttendanceRecord) *AttendanceModel {
	if a == nil {
		return nil
	}

	return &AttendanceModel{
		ID:          a.ID,
		StudentID:   a.StudentID,
		BatchNumber: a.BatchNumber,
		Date:        a.Date,
		Present:     a.Present,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func attendanceModelToDomain(m *AttendanceModel) *domain.AttendanceRecord {
	if m == nil {
		return nil
	}

	return &domain.AttendanceRecord{
		ID:          m.ID,
		StudentID:   m.StudentID,
		BatchNumber: m.BatchNumber,
		Date:        m.Date,
		Present:     m.Present,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// wrapStorageError classifies backend failures per the repository error
// taxonomy: record-not-found is mapped by each call site, scan/decode
// problems become ErrDecode, everything else ErrStorage.
func wrapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, gorm.ErrInvalidData) || errors.Is(err, gorm.ErrInvalidValue) || errors.Is(err, gorm.ErrInvalidValueOfLength) {
		return fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrStorage, err)
}
