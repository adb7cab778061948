package models

import "time"

// Notification types.
const (
	NotificationTypeInfo     = "info"
	NotificationTypeSuccess  = "success"
	NotificationTypeWarning  = "warning"
	NotificationTypeError    = "error"
	NotificationTypeApproval = "approval"
)

type Notification struct {
	NotificationID uint       `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserEmail      string     `gorm:"column:user_email;index" json:"user_email"`
	Title          string     `gorm:"column:title" json:"title"`
	Message        string     `gorm:"column:message" json:"message"`
	Type           string     `gorm:"column:type" json:"type"` // info|success|warning|error|approval
	IsRead         bool       `gorm:"column:is_read" json:"is_read"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	ReadAt         *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
}

func (Notification) TableName() string { return "notifications" }
