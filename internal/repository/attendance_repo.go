package repository

import (
	"context"
	"time"

	"github.com/trackademy/batchline/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DayRate is one day's attendance counts.
type DayRate struct {
	Total   int64
	Present int64
}

type AttendanceRepository interface {
	Upsert(ctx context.Context, a *domain.AttendanceRecord) error
	ReportByBatch(ctx context.Context, batchNumber string, from, to *time.Time) ([]domain.StudentAttendance, error)
	RateForDate(ctx context.Context, date time.Time) (DayRate, error)
}

type GormAttendanceRepo struct {
	db *gorm.DB
}

func NewGormAttendanceRepo(db *gorm.DB) *GormAttendanceRepo {
	return &GormAttendanceRepo{db: db}
}

// Upsert writes one attendance mark per student per day; marking the same
// day again overwrites the present flag.
func (r *GormAttendanceRepo) Upsert(ctx context.Context, a *domain.AttendanceRecord) error {
	model := attendanceModelFromDomain(a)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"present", "batch_number", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return wrapStorageError(err)
	}
	if a != nil {
		*a = *attendanceModelToDomain(model)
	}
	return nil
}

type reportRow struct {
	StudentID   string `gorm:"column:student_id"`
	StudentName string `gorm:"column:student_name"`
	TotalDays   int    `gorm:"column:total_days"`
	PresentDays int    `gorm:"column:present_days"`
}

// ReportByBatch aggregates per-student attendance for one batch over an
// optional date window.
func (r *GormAttendanceRepo) ReportByBatch(ctx context.Context, batchNumber string, from, to *time.Time) ([]domain.StudentAttendance, error) {
	query := r.db.WithContext(ctx).
		Model(&AttendanceModel{}).
		Select("attendance_records.student_id AS student_id, "+
			"s.full_name AS student_name, "+
			"COUNT(*) AS total_days, "+
			"COUNT(*) FILTER (WHERE attendance_records.present) AS present_days").
		Joins("LEFT JOIN students s ON s.id = attendance_records.student_id").
		Where("attendance_records.batch_number = ?", batchNumber)

	if from != nil {
		query = query.Where("attendance_records.date >= ?", *from)
	}
	if to != nil {
		query = query.Where("attendance_records.date <= ?", *to)
	}

	var rows []reportRow
	err := query.
		Group("attendance_records.student_id, s.full_name").
		Order("s.full_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStorageError(err)
	}

	report := make([]domain.StudentAttendance, 0, len(rows))
	for _, row := range rows {
		report = append(report, domain.StudentAttendance{
			StudentID:   row.StudentID,
			StudentName: row.StudentName,
			TotalDays:   row.TotalDays,
			PresentDays: row.PresentDays,
		})
	}
	return report, nil
}

func (r *GormAttendanceRepo) RateForDate(ctx context.Context, date time.Time) (DayRate, error) {
	var row struct {
		Total   int64 `gorm:"column:total"`
		Present int64 `gorm:"column:present"`
	}
	err := r.db.WithContext(ctx).
		Model(&AttendanceModel{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE present) AS present").
		Where("date = ?", date).
		Scan(&row).Error
	if err != nil {
		return DayRate{}, wrapStorageError(err)
	}
	return DayRate{Total: row.Total, Present: row.Present}, nil
}
