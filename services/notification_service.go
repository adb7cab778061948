package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"report-approval-api/config"
	"report-approval-api/models"
	"report-approval-api/utils"
)

// JobEnqueuer is the slice of the job-runner capability the dispatcher needs.
// The tasks broker satisfies it; tests inject a recorder.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, jobType string, args map[string]any) (string, error)
}

type NotificationService struct {
	db   *gorm.DB
	jobs JobEnqueuer
}

func NewNotificationService(db *gorm.DB, jobs JobEnqueuer) *NotificationService {
	if db == nil {
		db = config.DB
	}
	return &NotificationService{db: db, jobs: jobs}
}

// Create writes a single notification to a user's inbox.
func (s *NotificationService) Create(userEmail, title, message, notificationType string) (*models.Notification, error) {
	if notificationType == "" {
		notificationType = models.NotificationTypeInfo
	}
	n := &models.Notification{
		UserEmail: userEmail,
		Title:     title,
		Message:   message,
		Type:      notificationType,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// NotifyApprovalRequired fans an approval request out to every active
// technical-manager user. Individual failures are logged and the remaining
// recipients still get theirs; the return value reports whether every
// recipient was reached. When email notifications are enabled, one email job
// per recipient is enqueued as well.
func (s *NotificationService) NotifyApprovalRequired(report *models.Report) bool {
	var active []models.User
	if err := s.db.Where("status = ?", models.UserStatusActive).Find(&active).Error; err != nil {
		log.Printf("failed to resolve approvers for report %s: %v", report.ID, err)
		return false
	}

	// Role matching goes through the classifier so stored variants like
	// "technical manager" resolve the same way they do for stage ownership.
	var tms []models.User
	for _, u := range active {
		if utils.ClassifyRole(u.Role) == utils.RoleTechnicalManager {
			tms = append(tms, u)
		}
	}

	ok := true
	for _, tm := range tms {
		_, err := s.Create(
			tm.Email,
			"New Report for Approval",
			fmt.Sprintf("Report %q requires your approval", report.DocumentTitle),
			models.NotificationTypeApproval,
		)
		if err != nil {
			log.Printf("failed to create approval notification for %s: %v", tm.Email, err)
			ok = false
		}
	}

	if config.Settings().EnableEmailNotifications && s.jobs != nil {
		for _, tm := range tms {
			_, err := s.jobs.Enqueue(context.Background(), "send_email", map[string]any{
				"recipient": tm.Email,
				"subject":   "New Report Pending Approval",
				"body":      fmt.Sprintf("A new report %q is pending your approval.", report.DocumentTitle),
			})
			if err != nil {
				log.Printf("failed to enqueue approval email for %s: %v", tm.Email, err)
				ok = false
			}
		}
	}

	return ok
}

// GetUnreadCount returns the unread notification count for a user,
// degrading to 0 on error.
func (s *NotificationService) GetUnreadCount(userEmail string) int {
	var n int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_email = ? AND is_read = ?", userEmail, false).
		Count(&n).Error; err != nil {
		log.Printf("failed to count unread notifications for %s: %v", userEmail, err)
		return 0
	}
	return int(n)
}

// MarkAsRead marks a notification read, but only when it belongs to
// userEmail. Returns false when no matching record exists.
func (s *NotificationService) MarkAsRead(notificationID uint, userEmail string) bool {
	now := time.Now().UTC()
	res := s.db.Model(&models.Notification{}).
		Where("notification_id = ? AND user_email = ?", notificationID, userEmail).
		Updates(map[string]any{"is_read": true, "read_at": &now})
	if res.Error != nil {
		log.Printf("failed to mark notification %d read: %v", notificationID, res.Error)
		return false
	}
	return res.RowsAffected > 0
}

// MarkAllRead marks every unread notification of a user read.
func (s *NotificationService) MarkAllRead(userEmail string) error {
	now := time.Now().UTC()
	return s.db.Model(&models.Notification{}).
		Where("user_email = ? AND is_read = ?", userEmail, false).
		Updates(map[string]any{"is_read": true, "read_at": &now}).Error
}

// List returns a page of a user's notifications, newest first.
func (s *NotificationService) List(userEmail string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := s.db.Where("user_email = ?", userEmail)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var items []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
