package services

import (
	"context"
	"testing"

	"report-approval-api/models"
)

// enqueueRecorder captures enqueued jobs without a broker.
type enqueueRecorder struct {
	jobs []recordedJob
}

type recordedJob struct {
	Type string
	Args map[string]any
}

func (r *enqueueRecorder) Enqueue(ctx context.Context, jobType string, args map[string]any) (string, error) {
	r.jobs = append(r.jobs, recordedJob{Type: jobType, Args: args})
	return "test-job-id", nil
}

func TestNotifyApprovalRequiredFansOutToActiveTMs(t *testing.T) {
	t.Setenv("ENABLE_EMAIL_NOTIFICATIONS", "true")

	db := openTestDB(t)
	seedUser(t, db, "Tess Mercer", "tm0@example.com", "technical manager", models.UserStatusActive)
	seedUser(t, db, "Tara Manning", "tm1@example.com", "Technical Manager", models.UserStatusActive)
	seedUser(t, db, "Tom Marsh", "tm2@example.com", "Automation Manager", models.UserStatusActive)
	seedUser(t, db, "Theo March", "tm3@example.com", "TM", models.UserStatusInactive)
	seedUser(t, db, "Pat Morgan", "pm@example.com", "Project Manager", models.UserStatusActive)

	recorder := &enqueueRecorder{}
	notifier := NewNotificationService(db, recorder)
	svc := NewReportService(db, notifier)

	report := seedReport(t, db, svc, "SAT Rev A", "eng@example.com")
	if err := svc.UpdateStatus(report.ID, models.ReportStatusPending, "eng@example.com", "Engineer"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Every active technical manager is notified, regardless of how the role
	// string is cased; the inactive TM and the project manager are not.
	var recipients []string
	db.Model(&models.Notification{}).Order("user_email").Pluck("user_email", &recipients)
	want := []string{"tm0@example.com", "tm1@example.com", "tm2@example.com"}
	if len(recipients) != len(want) {
		t.Fatalf("notified %v, want the three active TMs", recipients)
	}
	for i := range want {
		if recipients[i] != want[i] {
			t.Fatalf("notified %v, want %v", recipients, want)
		}
	}

	if len(recorder.jobs) != 3 {
		t.Fatalf("enqueued %d email jobs, want 3", len(recorder.jobs))
	}
	for _, j := range recorder.jobs {
		if j.Type != "send_email" {
			t.Errorf("job type = %q, want send_email", j.Type)
		}
		if j.Args["recipient"] == "" {
			t.Errorf("email job missing recipient: %v", j.Args)
		}
	}

	got, _ := svc.GetReport(report.ID)
	if !got.ApprovalNotificationSent {
		t.Error("notification flag not set after dispatch")
	}
}

func TestNotifyApprovalRequiredWithoutEmailFlag(t *testing.T) {
	t.Setenv("ENABLE_EMAIL_NOTIFICATIONS", "")
	db := openTestDB(t)
	seedUser(t, db, "Tara Manning", "tm1@example.com", "TM", models.UserStatusActive)

	recorder := &enqueueRecorder{}
	notifier := NewNotificationService(db, recorder)
	svc := NewReportService(db, notifier)

	report := seedReport(t, db, svc, "SAT Rev A", "eng@example.com")
	if err := svc.UpdateStatus(report.ID, models.ReportStatusPending, "eng@example.com", "Engineer"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	var n int64
	db.Model(&models.Notification{}).Count(&n)
	if n != 1 {
		t.Fatalf("notifications = %d, want 1", n)
	}
	if len(recorder.jobs) != 0 {
		t.Fatalf("email jobs enqueued with flag off: %d", len(recorder.jobs))
	}
}

func TestMarkAsReadEnforcesOwnership(t *testing.T) {
	db := openTestDB(t)
	notifier := NewNotificationService(db, nil)

	n, err := notifier.Create("owner@example.com", "Test", "body", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.Type != models.NotificationTypeInfo {
		t.Errorf("default type = %q, want info", n.Type)
	}

	if notifier.MarkAsRead(n.NotificationID, "intruder@example.com") {
		t.Fatal("mark read succeeded for a non-owner")
	}
	if got := notifier.GetUnreadCount("owner@example.com"); got != 1 {
		t.Fatalf("unread count after foreign mark = %d, want 1", got)
	}

	if !notifier.MarkAsRead(n.NotificationID, "owner@example.com") {
		t.Fatal("mark read failed for the owner")
	}
	if got := notifier.GetUnreadCount("owner@example.com"); got != 0 {
		t.Fatalf("unread count = %d, want 0", got)
	}

	var reloaded models.Notification
	db.First(&reloaded, n.NotificationID)
	if reloaded.ReadAt == nil {
		t.Error("read_at not stamped")
	}

	// Marking an already-read notification again still reports success.
	if !notifier.MarkAsRead(n.NotificationID, "owner@example.com") {
		t.Error("re-marking a read notification should still match the row")
	}
}

func TestMarkAllReadAndList(t *testing.T) {
	db := openTestDB(t)
	notifier := NewNotificationService(db, nil)

	for i := 0; i < 3; i++ {
		if _, err := notifier.Create("owner@example.com", "Test", "body", models.NotificationTypeApproval); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := notifier.Create("other@example.com", "Test", "body", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	unread, err := notifier.List("owner@example.com", true, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(unread) != 3 {
		t.Fatalf("unread list = %d, want 3", len(unread))
	}

	if err := notifier.MarkAllRead("owner@example.com"); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if got := notifier.GetUnreadCount("owner@example.com"); got != 0 {
		t.Fatalf("unread count = %d, want 0", got)
	}
	if got := notifier.GetUnreadCount("other@example.com"); got != 1 {
		t.Fatalf("other user's unread count = %d, want 1", got)
	}

	page, err := notifier.List("owner@example.com", false, 2, 0)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
}
