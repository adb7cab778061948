package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"report-approval-api/config"
	"report-approval-api/models"
)

// Defaults seeded into system_settings at bootstrap.
var defaultSettings = map[string]string{
	"company_name":        "Cully Automation",
	"email_notifications": "enabled",
	"approval_stages":     "2",
	"maintenance_mode":    "disabled",
}

type SystemService struct {
	db *gorm.DB
}

func NewSystemService(db *gorm.DB) *SystemService {
	if db == nil {
		db = config.DB
	}
	return &SystemService{db: db}
}

// InitializeDatabase migrates the schema, seeds the default admin account
// when no admin exists, and fills in missing system settings.
func (s *SystemService) InitializeDatabase() error {
	if err := models.Migrate(s.db); err != nil {
		return err
	}

	var adminCount int64
	if err := s.db.Model(&models.User{}).Where("role = ?", "Admin").Count(&adminCount).Error; err != nil {
		return err
	}
	if adminCount == 0 {
		admin := &models.User{
			FullName: "System Administrator",
			Email:    "admin@cullyautomation.com",
			Role:     "Admin",
			Status:   models.UserStatusActive,
		}
		// Must be changed on first login.
		if err := admin.SetPassword("admin123"); err != nil {
			return err
		}
		if err := s.db.Create(admin).Error; err != nil {
			return err
		}
		log.Printf("seeded default admin account %s", admin.Email)
	}

	for key, value := range defaultSettings {
		current, err := models.GetSetting(s.db, key)
		if err != nil {
			return err
		}
		if current == "" {
			if err := models.SetSetting(s.db, key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// CleanupOldData applies the retention policy: DRAFT reports not touched
// within the window are deleted, as are read notifications older than the
// window. Unread notifications are kept regardless of age. Returns the
// number of reports and notifications removed.
func (s *SystemService) CleanupOldData(days int) (int, int, error) {
	if days <= 0 {
		days = 90
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var reportsDeleted, notificationsDeleted int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("status = ? AND updated_at < ?", models.ReportStatusDraft, cutoff).
			Delete(&models.Report{})
		if res.Error != nil {
			return res.Error
		}
		reportsDeleted = int(res.RowsAffected)

		res = tx.Where("is_read = ? AND created_at < ?", true, cutoff).
			Delete(&models.Notification{})
		if res.Error != nil {
			return res.Error
		}
		notificationsDeleted = int(res.RowsAffected)
		return nil
	})
	if err != nil {
		log.Printf("cleanup failed: %v", err)
		return 0, 0, err
	}
	return reportsDeleted, notificationsDeleted, nil
}
