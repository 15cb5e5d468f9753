package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/trackademy/batchline/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_batches",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&repository.BatchModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.BatchModel{})
			},
		},
		{
			ID: "000002_create_students",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.StudentModel{}); err != nil {
					return err
				}
				// batch_number has no FK; students may outlive their batch.
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_students_status ON students (status)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.StudentModel{})
			},
		},
		{
			ID: "000003_create_courses",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&repository.CourseModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.CourseModel{})
			},
		},
		{
			ID: "000004_create_enquiries",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.EnquiryModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_enquiries_status_created ON enquiries (status, created_at)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.EnquiryModel{})
			},
		},
		{
			ID: "000005_create_notifications",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.NotificationModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_notifications_read_created ON notifications (read, created_at DESC)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.NotificationModel{})
			},
		},
		{
			ID: "000006_create_attendance_records",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&repository.AttendanceModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.AttendanceModel{})
			},
		},
	})

	return m.Migrate()
}
