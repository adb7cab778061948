package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"report-approval-api/models"
)

func TestCleanupOldDataRetention(t *testing.T) {
	db := openTestDB(t)
	svc := NewSystemService(db)

	old := time.Now().UTC().AddDate(0, 0, -120)
	recent := time.Now().UTC().AddDate(0, 0, -5)

	mkReport := func(title, status string, updated time.Time) {
		r := &models.Report{
			ID:            uuid.NewString(),
			Type:          "SAT",
			Status:        status,
			DocumentTitle: title,
			UserEmail:     "eng@example.com",
			CreatedAt:     updated,
			UpdatedAt:     updated,
		}
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed report %s: %v", title, err)
		}
	}
	mkReport("stale draft", models.ReportStatusDraft, old)
	mkReport("recent draft", models.ReportStatusDraft, recent)
	mkReport("stale but pending", models.ReportStatusPending, old)

	mkNotification := func(read bool, created time.Time) {
		n := &models.Notification{
			UserEmail: "eng@example.com",
			Title:     "Test",
			Message:   "body",
			Type:      models.NotificationTypeInfo,
			IsRead:    read,
			CreatedAt: created,
		}
		if err := db.Create(n).Error; err != nil {
			t.Fatalf("seed notification: %v", err)
		}
	}
	mkNotification(true, old)    // removed
	mkNotification(false, old)   // kept: unread survives regardless of age
	mkNotification(true, recent) // kept: inside the window

	reports, notifications, err := svc.CleanupOldData(90)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if reports != 1 || notifications != 1 {
		t.Fatalf("cleanup removed (%d, %d), want (1, 1)", reports, notifications)
	}

	var titles []string
	db.Model(&models.Report{}).Order("document_title").Pluck("document_title", &titles)
	if len(titles) != 2 || titles[0] != "recent draft" || titles[1] != "stale but pending" {
		t.Fatalf("surviving reports = %v", titles)
	}

	var n int64
	db.Model(&models.Notification{}).Count(&n)
	if n != 2 {
		t.Fatalf("surviving notifications = %d, want 2", n)
	}

	// A second pass finds nothing left to remove.
	reports, notifications, err = svc.CleanupOldData(0) // 0 falls back to the 90-day default
	if err != nil {
		t.Fatalf("second cleanup: %v", err)
	}
	if reports != 0 || notifications != 0 {
		t.Fatalf("second cleanup removed (%d, %d), want (0, 0)", reports, notifications)
	}
}

func TestInitializeDatabaseIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	svc := NewSystemService(db)

	if err := svc.InitializeDatabase(); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if err := svc.InitializeDatabase(); err != nil {
		t.Fatalf("second init: %v", err)
	}

	var admins int64
	db.Model(&models.User{}).Where("role = ?", "Admin").Count(&admins)
	if admins != 1 {
		t.Fatalf("admin accounts = %d, want 1", admins)
	}

	stages, err := models.GetSetting(db, "approval_stages")
	if err != nil || stages != "2" {
		t.Fatalf("approval_stages = %q err %v, want 2", stages, err)
	}

	// Operator overrides survive re-initialization.
	if err := models.SetSetting(db, "company_name", "Acme Automation"); err != nil {
		t.Fatalf("set setting: %v", err)
	}
	if err := svc.InitializeDatabase(); err != nil {
		t.Fatalf("third init: %v", err)
	}
	name, _ := models.GetSetting(db, "company_name")
	if name != "Acme Automation" {
		t.Fatalf("company_name = %q, want the override kept", name)
	}
}
