package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"report-approval-api/services"
	"report-approval-api/tasks"
)

func notificationService() *services.NotificationService {
	return services.NewNotificationService(getDB(), JobBroker)
}

// GetNotifications returns a page of the caller's notifications.
func GetNotifications(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	unreadOnly := strings.TrimSpace(c.Query("unreadOnly"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	items, err := notificationService().List(
		email,
		unreadOnly == "1" || strings.EqualFold(unreadOnly, "true"),
		limit,
		offset,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetUnreadCount returns the caller's unread notification count.
func GetUnreadCount(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": notificationService().GetUnreadCount(email)})
}

// MarkNotificationRead marks one of the caller's notifications read.
func MarkNotificationRead(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if !notificationService().MarkAsRead(uint(id), email) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MarkAllNotificationsRead marks every unread notification of the caller read.
func MarkAllNotificationsRead(c *gin.Context) {
	email, ok := currentEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := notificationService().MarkAllRead(email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type bulkNotificationRequest struct {
	UserEmails []string `json:"user_emails" binding:"required"`
	Title      string   `json:"title" binding:"required"`
	Message    string   `json:"message" binding:"required"`
	Type       string   `json:"type"`
}

// SendBulkNotification enqueues a bulk notification job (admin only).
func SendBulkNotification(c *gin.Context) {
	var req bulkNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if JobBroker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "job runner unavailable"})
		return
	}

	jobID, err := JobBroker.Enqueue(c.Request.Context(), tasks.JobBulkNotification, map[string]any{
		"user_emails": req.UserEmails,
		"title":       req.Title,
		"message":     req.Message,
		"type":        req.Type,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task_id": jobID})
}
