package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"report-approval-api/models"
)

// openTestDB creates an in-memory sqlite DB with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email, role, status string) *models.User {
	t.Helper()
	u := &models.User{FullName: name, Email: email, Role: role, Status: status}
	if err := u.SetPassword("secret123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func seedReport(t *testing.T, db *gorm.DB, svc *ReportService, title, owner string) *models.Report {
	t.Helper()
	report, err := svc.CreateReport(&CreateReportInput{DocumentTitle: title}, owner)
	if err != nil {
		t.Fatalf("seed report %q: %v", title, err)
	}
	return report
}
